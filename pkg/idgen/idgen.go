package idgen

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	TrxPrefix    = "TRX-"
	BastIDLength = 8
)

// Generator menghasilkan trx_id unik per node dan kandidat bast_id.
type Generator struct {
	node *snowflake.Node
}

func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &Generator{node: node}, nil
}

// NextTrxID: TRX- + snowflake base36, uppercase. Monoton per node.
func (g *Generator) NextTrxID() string {
	return TrxPrefix + strings.ToUpper(g.node.Generate().Base36())
}

// NextBastID tidak dijamin unik; pemanggil wajib cek ke database dan retry.
func (g *Generator) NextBastID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:BastIDLength])
}
