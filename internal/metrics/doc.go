// Package metrics provides build metrics for sitebuilder.
//
// Components receive a Recorder and never check for nil: NoopRecorder is the
// default, and PrometheusRecorder is swapped in when the preview server exposes
// a /metrics endpoint.
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	builder := build.New(cfg, build.WithRecorder(recorder))
package metrics
