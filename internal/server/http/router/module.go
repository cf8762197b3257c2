package router

import "go.uber.org/fx"

// Module provides the gin engine to the fx runtime.
var Module = fx.Provide(Setup)
