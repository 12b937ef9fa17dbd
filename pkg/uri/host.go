package uri

import (
	"net"
	"strconv"
	"strings"
)

// Label is a host part addressed by its ordinal position counted from
// the right ("1st" is the right-most label).
type Label struct {
	Ordinal string
	Value   string
}

// Ordinal renders n with its English ordinal suffix: 1st, 2nd, 3rd, 4th,
// 11th, 12th, 13th, 21st.
func Ordinal(n int) string {
	if r := n % 100; r >= 11 && r <= 13 {
		return strconv.Itoa(n) + "th"
	}
	switch n % 10 {
	case 1:
		return strconv.Itoa(n) + "st"
	case 2:
		return strconv.Itoa(n) + "nd"
	case 3:
		return strconv.Itoa(n) + "rd"
	default:
		return strconv.Itoa(n) + "th"
	}
}

type hostParts struct {
	// parent domain, e.g. "example.co.uk"
	host string
	// label of the parent domain without TLD, e.g. "example"
	name       string
	subdomains []string
	tlds       []string
}

// decomposeHost splits a host into subdomains, parent label and TLD parts.
// Labels after the first with at most three characters are TLD parts; when
// there are none, the last label is the TLD. IP addresses and single-label
// hosts are returned as is.
func decomposeHost(host string) hostParts {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" || isIP(host) || !strings.Contains(host, ".") {
		return hostParts{host: host, name: host}
	}

	labels := strings.Split(host, ".")
	if labels[0] == "www" && len(labels) > 2 {
		labels = labels[1:]
	}

	var tlds, candidates []string
	for i, l := range labels {
		if i >= 1 && len(l) <= 3 && l != "www" {
			tlds = append(tlds, l)
			continue
		}
		candidates = append(candidates, l)
	}
	if len(tlds) == 0 {
		tlds = labels[len(labels)-1:]
		candidates = labels[:len(labels)-1]
	}
	if len(candidates) == 0 {
		return hostParts{host: strings.Join(labels, "."), name: strings.Join(labels, ".")}
	}

	name := candidates[len(candidates)-1]
	return hostParts{
		host:       name + "." + strings.Join(tlds, "."),
		name:       name,
		subdomains: candidates[:len(candidates)-1],
		tlds:       tlds,
	}
}

func isIP(host string) bool {
	return net.ParseIP(strings.Trim(host, "[]")) != nil
}

// subdomainLabels assigns ordinals to subdomains of a host made of total
// labels: the subdomain at index k gets ordinal total-k.
func subdomainLabels(subs []string, total int) []Label {
	out := make([]Label, len(subs))
	for k, v := range subs {
		out[k] = Label{Ordinal: Ordinal(total - k), Value: v}
	}
	return out
}

// tldLabels assigns ordinals to TLD parts: index k of m gets ordinal m-k.
func tldLabels(tlds []string) []Label {
	out := make([]Label, len(tlds))
	for k, v := range tlds {
		out[k] = Label{Ordinal: Ordinal(len(tlds) - k), Value: v}
	}
	return out
}
