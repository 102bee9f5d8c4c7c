package gen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"prizewheel/pkg/config"
)

var Module = fx.Module("gen",
	fx.Provide(ProvideNode),
)

// ProvideNode builds the snowflake node used for spin ids. NODE_ID only
// matters when several kiosks share one journal database.
func ProvideNode(cfg *config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d: %w", cfg.NodeID, err)
	}
	return node, nil
}
