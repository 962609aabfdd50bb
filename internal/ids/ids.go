package ids

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node    *snowflake.Node
	nodeErr error
	once    sync.Once
)

// Init initializes the Snowflake node with the given node ID. Only the
// first call has an effect; later calls report the outcome of that one.
func Init(nodeID int64) error {
	once.Do(func() {
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	return nodeErr
}

// New generates a new time-ordered int64 ID. Without a prior Init the node
// defaults to 1. It panics if the node could not be created, since every
// caller would otherwise persist a zero id.
func New() int64 {
	if err := Init(1); err != nil {
		panic("ids: snowflake node unavailable: " + err.Error())
	}
	return node.Generate().Int64()
}

// Parse parses a decimal identifier as used in URLs.
func Parse(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
