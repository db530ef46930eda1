package signing

import "go.uber.org/fx"

// Module exposes the offline-code signer via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
