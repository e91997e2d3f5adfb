// Package factory builds pluggable modules, such as metrics sinks, from a
// type name and a map of raw settings. It also decodes strategy parameters
// so that values read from YAML, JSON or the environment land in typed
// structs the same way.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//		var c struct{ URL string `json:"url"` }
//		if err := factory.Decode(conf, &c); err != nil {
//			return nil, err
//		}
//		return newInfluxSink(c.URL), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://influx:8086"}})
package factory
