package feedback

import "go.uber.org/fx"

// Module provides the shared notifier.
var Module = fx.Provide(NewNotifier)
