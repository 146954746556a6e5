package yield_test

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/curve"
	"github.com/meenmo/finkernel/discount"
	"github.com/meenmo/finkernel/rootfind"
	"github.com/meenmo/finkernel/yield"
)

func ExampleSolveYield() {
	bond, err := discount.Bullet(decimal.NewFromInt(1000), decimal.RequireFromString("0.05"), 10, 1)
	if err != nil {
		panic(err)
	}
	res, err := yield.SolveYield(bond, decimal.NewFromInt(1000), rootfind.DefaultConfig)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Yield.StringFixed(4), res.Iterations)
	// Output: 0.0500 0
}

func ExampleSolveIRR() {
	project := discount.MustSchedule(1, []discount.Cashflow{
		{Period: 0, Amount: decimal.NewFromInt(-1000)},
		{Period: 1, Amount: decimal.NewFromInt(1100)},
	})
	res, err := yield.SolveIRR(project, rootfind.DefaultConfig)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Yield.StringFixed(4))
	// Output: 0.1000
}

func ExampleImpliedForward() {
	zero := curve.MustNew([]curve.Point{
		{Maturity: decimal.NewFromInt(1), Value: decimal.RequireFromString("0.02")},
		{Maturity: decimal.NewFromInt(2), Value: decimal.RequireFromString("0.03")},
	})
	fwd, err := yield.ImpliedForward(zero, decimal.NewFromInt(1), decimal.NewFromInt(2), 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(fwd.StringFixed(6))
	// Output: 0.040098
}
