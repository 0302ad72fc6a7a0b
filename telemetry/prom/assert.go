package prom

import "github.com/nyxmesh/nyx-core/telemetry"

var _ telemetry.Sink = (*Sink)(nil)
