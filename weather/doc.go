// Package weather fetches forecast data from an Open-Meteo compatible
// service.
//
// The client issues one HTTPS GET per call, decodes the JSON response,
// and maps it onto a Forecast with current conditions and per-day
// summaries. WMO weather codes are translated to short descriptions.
// There is no state, no retrying, and no caching.
package weather
