// Package provider implements HTTP clients for the external data sources the
// bot relays: OpenWeatherMap (weather), NewsAPI (headlines) and TimePad (events).
//
// Each call is a single synchronous GET. Clients never retry and never cache.
package provider
