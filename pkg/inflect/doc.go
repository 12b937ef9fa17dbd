// Package inflect converts URI segments into identifier casing.
//
// Router segments arrive dash-separated ("user-profile") and are mapped to
// method names with [Camel] ("userProfile") and to controller type names
// with [Studly] ("UserProfile"). Word capitalization uses golang.org/x/text
// so non-ASCII segments are cased correctly.
package inflect
