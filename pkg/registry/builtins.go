package registry

import (
	"github.com/cascadehq/cascade/pkg/nodes/conditional"
	"github.com/cascadehq/cascade/pkg/nodes/delay"
	"github.com/cascadehq/cascade/pkg/nodes/httprequest"
	"github.com/cascadehq/cascade/pkg/nodes/lognode"
	"github.com/cascadehq/cascade/pkg/nodes/merge"
	"github.com/cascadehq/cascade/pkg/nodes/schedule"
	"github.com/cascadehq/cascade/pkg/nodes/setvariable"
	"github.com/cascadehq/cascade/pkg/nodes/start"
	"github.com/cascadehq/cascade/pkg/nodes/transform"
	"github.com/cascadehq/cascade/pkg/protocol"
)

// RegisterDefaultNodes installs every built-in node type.
func RegisterDefaultNodes(r *Registry) {
	deps := protocol.Dependencies{Logger: r.logger}

	r.RegisterNode(start.NewFactory(deps))
	r.RegisterNode(conditional.NewFactory(deps))
	r.RegisterNode(setvariable.NewFactory(deps))
	r.RegisterNode(transform.NewFactory(deps))
	r.RegisterNode(httprequest.NewFactory(deps))
	r.RegisterNode(lognode.NewFactory(deps))
	r.RegisterNode(delay.NewFactory(deps))
	r.RegisterNode(merge.NewFactory(deps))
	r.RegisterNode(schedule.NewFactory(deps))
}
