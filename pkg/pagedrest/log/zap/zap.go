// Package zap adapts a *zap.Logger to pagedrest.Logger.
package zap

import (
	"sort"

	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"go.uber.org/zap"
)

// ZapLogger forwards pagedrest log calls to L.
type ZapLogger struct{ L *zap.Logger }

var _ pagedrest.Logger = ZapLogger{}

func (z ZapLogger) Debug(msg string, f map[string]interface{}) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f map[string]interface{})  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f map[string]interface{})  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f map[string]interface{}) { z.L.Error(msg, zf(f)...) }

// zf converts fields in key order so output is stable.
func zf(f map[string]interface{}) []zap.Field {
	if len(f) == 0 {
		return nil
	}

	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		out = append(out, zap.Any(k, f[k]))
	}

	return out
}
