package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

func InitSnowflake(nodeID int64) {
	once.Do(func() {
		var err error
		node, err = snowflake.NewNode(nodeID)
		if err != nil {
			panic(err)
		}
	})
}

// Generate falls back to node 0 when InitSnowflake was never called.
func Generate() int64 {
	InitSnowflake(0)
	return node.Generate().Int64()
}
