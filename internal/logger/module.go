package logger

import "go.uber.org/fx"

// Module exposes the slog logger to fx graphs.
var Module = fx.Provide(New)
