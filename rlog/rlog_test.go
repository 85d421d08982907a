package rlog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
)

func TestReservedKeyPrefix(t *testing.T) {
	testCases := []struct {
		Key  string
		Want string
	}{
		{
			Key:  "key",
			Want: `{"level":"info","key":"value"}` + "\n",
		},
		{
			Key:  "rpc_object",
			Want: `{"level":"info","x_rpc_object":"value"}` + "\n",
		},
		{
			Key:  "rpcobject",
			Want: `{"level":"info","rpcobject":"value"}` + "\n",
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.Key+"/event", func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			ev := logger.Info()
			addEventEntry(ev, tc.Key, "value")
			ev.Send()
			if got := buf.String(); got != tc.Want {
				t.Fatalf("want %q, got %q", tc.Want, got)
			}
		})
		t.Run(tc.Key+"/context", func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			logger = addContext(logger.With(), tc.Key, "value").Logger()
			logger.Info().Send()
			if got := buf.String(); got != tc.Want {
				t.Fatalf("want %q, got %q", tc.Want, got)
			}
		})
	}
}

func TestManagerWithChaining(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	m := New(&base)

	ctx := m.With("object", "mock").With("method", "echo")
	ctx.Info("dispatched")

	got := buf.String()
	want := `{"level":"info","object":"mock","method":"echo","message":"dispatched"}` + "\n"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}
