package scheduler

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ChainTestSuite struct {
	suite.Suite
}

func TestChainTestSuite(t *testing.T) {
	suite.Run(t, new(ChainTestSuite))
}

func (ts *ChainTestSuite) TestEmptyChain() {
	c := ChainFromSlice(nil)
	ts.True(c.Empty())
	ts.Nil(c.Drain())
}

func (ts *ChainTestSuite) TestNilChainIsEmpty() {
	var c *Chain
	ts.True(c.Empty())
}

func (ts *ChainTestSuite) TestDrainPreservesOrder() {
	a, b, c := NewTask(1, "a", "h"), NewTask(2, "b", "h"), NewTask(3, "c", "h")
	chain := ChainFromSlice([]*Task{a, b, c})
	ts.False(chain.Empty())

	out := chain.Drain()
	ts.Equal([]*Task{a, b, c}, out)
	ts.True(chain.Empty())
	for _, t := range out {
		ts.False(t.Queued())
	}
}

func (ts *ChainTestSuite) TestDrainingTwiceReturnsNilSecondTime() {
	chain := ChainFromSlice([]*Task{NewTask(1, "a", "h")})
	ts.Len(chain.Drain(), 1)
	ts.Nil(chain.Drain())
}

func (ts *ChainTestSuite) TestSingleTaskChain() {
	a := NewTask(1, "a", "h")
	chain := ChainFromSlice([]*Task{a})
	out := chain.Drain()
	ts.Equal([]*Task{a}, out)
}
