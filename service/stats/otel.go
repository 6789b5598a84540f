package stats

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Otel records gauges through the global OpenTelemetry meter provider. The
// metric API in use only offers observable gauges, so the recorder keeps the
// latest value per name and registers one callback per instrument.
type Otel struct {
	meter metric.Meter

	mu     sync.Mutex
	values map[string]float64
	known  map[string]metric.Float64ObservableGauge
}

// NewOtel creates a recorder publishing under the given instrumentation name.
func NewOtel(name string) *Otel {
	return &Otel{
		meter:  otel.Meter(name),
		values: map[string]float64{},
		known:  map[string]metric.Float64ObservableGauge{},
	}
}

// Gauge stores the latest value for the named gauge, lazily registering the
// instrument on first use.
func (o *Otel) Gauge(name string, value float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.values[name] = value
	if _, ok := o.known[name]; ok {
		return
	}
	gauge, err := o.meter.Float64ObservableGauge(name,
		metric.WithFloat64Callback(func(_ context.Context, observer metric.Float64Observer) error {
			o.mu.Lock()
			current := o.values[name]
			o.mu.Unlock()
			observer.Observe(current)
			return nil
		}))
	if err != nil {
		return
	}
	o.known[name] = gauge
}

var _ Recorder = (*Otel)(nil)

var (
	providerOnce sync.Once
	providerErr  error
)

// Init installs a global meter provider backed by the stdout exporter. If
// outputFile is empty metrics are written to os.Stdout. The function is safe
// to call multiple times; the first initialisation wins and later calls open
// no files.
func Init(outputFile string) error {
	providerOnce.Do(func() {
		var w io.Writer = os.Stdout
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				providerErr = err
				return
			}
			w = f
		}
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			providerErr = err
			return
		}
		provider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)
		otel.SetMeterProvider(provider)
	})
	return providerErr
}
