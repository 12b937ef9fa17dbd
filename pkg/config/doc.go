// Package config loads the kernel's YAML configuration and turns it into
// the objects the runtime needs: the address table, segment parser
// options, the locale registry and the logger.
//
//	server:
//	  address: ":8080"
//	uri:
//	  protocol: REQUEST_URI
//	  suffix: .html
//	locales: [en, fr]
//	default_locale: en
//	translations: ./lang
//	routes:
//	  - pattern: /
//	    target: Home@index
//	  - methods: [POST]
//	    pattern: /login
//	    target: Auth@login
//	  - pattern: /old/**
//	    target: /new
//	subdomains:
//	  - host: api
//	    prefix: api
//	cache:
//	  redis_url: ${REDIS_URL}
//	  ttl: 5m
//
// Environment references are expanded before decoding and unknown keys are
// rejected. Targets are parsed once at load time, so a typo fails startup
// instead of a request.
package config
