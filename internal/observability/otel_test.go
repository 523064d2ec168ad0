package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tbourn/policy-tracker-backend/internal/config"
)

func keepGlobals(t *testing.T) {
	t.Helper()
	tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

func enabled(name string) config.OTELConfig {
	return config.OTELConfig{Enabled: true, Insecure: true, Endpoint: "localhost:4317", ServiceName: name, SampleRatio: 1}
}

func TestSetupOTel_DisabledIsNoop(t *testing.T) {
	keepGlobals(t)
	before := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{}, "v0")
	if err != nil || shutdown == nil {
		t.Fatalf("err=%v shutdown nil=%v", err, shutdown == nil)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatal("disabled setup replaced the provider")
	}
}

func TestSetupOTel_InstallsProvider(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		keepGlobals(t)
		cfg := enabled("policy-tracker-test")
		cfg.Insecure = insecure

		shutdown, err := SetupOTel(context.Background(), cfg, "v1.0.0", attribute.String("db.system", "sqlite"))
		if err != nil {
			t.Fatalf("insecure=%v: %v", insecure, err)
		}
		if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
			t.Fatalf("insecure=%v: provider not installed", insecure)
		}
		_, span := otel.Tracer("test").Start(context.Background(), "ListExpiringWithin")
		if !span.SpanContext().IsValid() {
			t.Fatal("span context not valid")
		}
		span.End()

		ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		_ = shutdown(ctx)
		cancel()
	}
}

func TestSetupOTel_ResourceCarriesExtras(t *testing.T) {
	keepGlobals(t)
	orig := newServiceResourceFn
	t.Cleanup(func() { newServiceResourceFn = orig })

	var got []attribute.KeyValue
	newServiceResourceFn = func(ctx context.Context, name, version string, extra ...attribute.KeyValue) (*resource.Resource, error) {
		got = extra
		return orig(ctx, name, version, extra...)
	}
	shutdown, err := SetupOTel(context.Background(), enabled("svc"), "v1", attribute.String("db.system", "postgresql"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = shutdown(context.Background()) }()
	if len(got) != 1 || got[0].Value.AsString() != "postgresql" {
		t.Fatalf("extras=%v", got)
	}
}

func TestSetupOTel_FailuresLeaveGlobals(t *testing.T) {
	cases := map[string]func(){
		"exporter": func() {
			newOTLPExporterFn = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
				return nil, errors.New("boom-exporter")
			}
		},
		"resource": func() {
			newServiceResourceFn = func(context.Context, string, string, ...attribute.KeyValue) (*resource.Resource, error) {
				return nil, errors.New("boom-resource")
			}
		},
	}
	for name, breakIt := range cases {
		t.Run(name, func(t *testing.T) {
			keepGlobals(t)
			exp, res := newOTLPExporterFn, newServiceResourceFn
			t.Cleanup(func() { newOTLPExporterFn, newServiceResourceFn = exp, res })
			breakIt()

			before := otel.GetTracerProvider()
			_, err := SetupOTel(context.Background(), enabled("svc"), "v0")
			if err == nil || !strings.Contains(err.Error(), "boom-"+name) {
				t.Fatalf("err=%v", err)
			}
			if otel.GetTracerProvider() != before {
				t.Fatal("provider replaced after failure")
			}
		})
	}
}

func TestSampler(t *testing.T) {
	cases := map[float64]string{
		1:   "AlwaysOnSampler",
		2:   "AlwaysOnSampler",
		0:   "AlwaysOffSampler",
		-1:  "AlwaysOffSampler",
		0.5: "TraceIDRatioBased",
	}
	for ratio, want := range cases {
		if d := Sampler(ratio).Description(); !strings.HasPrefix(d, "ParentBased{root:"+want) {
			t.Errorf("Sampler(%v)=%q want %s", ratio, d, want)
		}
	}
}

func TestClientOptions(t *testing.T) {
	cfg := enabled("svc")
	if n := len(clientOptions(cfg)); n != 2 {
		t.Fatalf("insecure options=%d", n)
	}
	cfg.Insecure = false
	if n := len(clientOptions(cfg)); n != 2 {
		t.Fatalf("tls options=%d", n)
	}
}
