package l2_service

import (
	"mirrorbalance/internal/domain"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func catalogsOf(instruments ...domain.Instrument) domain.Catalogs {
	return domain.Catalogs{
		Shares: domain.NewInstrumentCatalog(instruments),
	}
}

func TestCalculateRebalance(t *testing.T) {
	t.Run("scales the secondary to the primary allocation", func(t *testing.T) {
		p, s, err := Reconcile(
			[]domain.PortfolioPosition{pos("AAA", 10, 10), pos("BBB", 10, 10)},
			[]domain.PortfolioPosition{pos("AAA", 10, 10), pos("BBB", 15, 10)},
		)
		require.NoError(t, err)
		pairs, err := Pair(p, s)
		require.NoError(t, err)

		seq, totals, err := CalculateRebalance(pairs, catalogsOf(
			domain.Instrument{Figi: "AAA", Name: "Alpha", Lot: 1},
			domain.Instrument{Figi: "BBB", Name: "Beta", Lot: 1},
		))
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(200).Equal(totals.PrimaryTotal))
		require.True(t, decimal.NewFromInt(250).Equal(totals.SecondaryTotal))
		require.True(t, decimal.NewFromFloat(1.25).Equal(totals.Ratio))

		require.Equal(t, "", cmp.Diff([]domain.FinalPosition{
			{Figi: "AAA", Name: "Alpha", RebalanceAmount: decimal.NewFromInt(25), RebalanceLots: 3, Resolved: true},
			{Figi: "BBB", Name: "Beta", RebalanceAmount: decimal.NewFromInt(-25), RebalanceLots: -3, Resolved: true},
		}, slices.Collect(seq), decimalComparer))
	})

	t.Run("position held only by the secondary is sold off", func(t *testing.T) {
		p, s, err := Reconcile(
			[]domain.PortfolioPosition{pos("AAA", 10, 100)},
			[]domain.PortfolioPosition{pos("AAA", 20, 60), pos("BBB", 5, 10)},
		)
		require.NoError(t, err)
		pairs, err := Pair(p, s)
		require.NoError(t, err)

		seq, totals, err := CalculateRebalance(pairs, catalogsOf())
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(1000).Equal(totals.PrimaryTotal))
		require.True(t, decimal.NewFromInt(1250).Equal(totals.SecondaryTotal))
		require.True(t, decimal.NewFromFloat(1.25).Equal(totals.Ratio))

		require.Equal(t, "", cmp.Diff([]domain.FinalPosition{
			{Figi: "AAA", Name: domain.UnresolvedInstrumentName, RebalanceAmount: decimal.NewFromInt(50), RebalanceLots: 1},
			{Figi: "BBB", Name: domain.UnresolvedInstrumentName, RebalanceAmount: decimal.NewFromInt(-50), RebalanceLots: -5},
		}, slices.Collect(seq), decimalComparer))
	})

	t.Run("secondary holding only what the primary lacks", func(t *testing.T) {
		// primary 100 in AAA, secondary 100 in BBB: ratio 1, buy AAA sell BBB
		p, s, err := Reconcile(
			[]domain.PortfolioPosition{pos("AAA", 10, 10)},
			[]domain.PortfolioPosition{pos("BBB", 4, 25)},
		)
		require.NoError(t, err)
		pairs, err := Pair(p, s)
		require.NoError(t, err)

		seq, totals, err := CalculateRebalance(pairs, catalogsOf())
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(1).Equal(totals.Ratio))

		require.Equal(t, "", cmp.Diff([]domain.FinalPosition{
			{Figi: "AAA", Name: domain.UnresolvedInstrumentName, RebalanceAmount: decimal.NewFromInt(100), RebalanceLots: 10},
			{Figi: "BBB", Name: domain.UnresolvedInstrumentName, RebalanceAmount: decimal.NewFromInt(-100), RebalanceLots: -4},
		}, slices.Collect(seq), decimalComparer))
	})

	t.Run("amounts are converted to lots", func(t *testing.T) {
		pairs := []domain.ReconciledPair{
			{Primary: pos("SBER", 100, 300), Secondary: pos("SBER", 0, 300)},
			{Primary: pos("GAZP", 0, 150), Secondary: pos("GAZP", 10, 150)},
		}
		seq, _, err := CalculateRebalance(pairs, catalogsOf(
			domain.Instrument{Figi: "SBER", Name: "Сбер Банк", Lot: 10},
			domain.Instrument{Figi: "GAZP", Name: "Газпром", Lot: 10},
		))
		require.NoError(t, err)

		positions := slices.Collect(seq)
		// ratio 1500 / 30000 = 0.05; SBER target 1500 = 5 shares = 0.5 lots
		require.Equal(t, int64(1), positions[0].RebalanceLots)
		require.Equal(t, int64(-1), positions[1].RebalanceLots)
	})

	t.Run("zero primary total", func(t *testing.T) {
		pairs := []domain.ReconciledPair{
			{Primary: pos("AAA", 0, 10), Secondary: pos("AAA", 5, 10)},
		}
		_, _, err := CalculateRebalance(pairs, catalogsOf())
		require.ErrorIs(t, err, domain.ErrZeroPrimaryValue)

		_, _, err = CalculateRebalance(nil, catalogsOf())
		require.ErrorIs(t, err, domain.ErrZeroPrimaryValue)
	})

	t.Run("ratio sanity", func(t *testing.T) {
		pairs := []domain.ReconciledPair{
			{Primary: pos("AAA", 3, 17), Secondary: pos("AAA", 1, 17)},
			{Primary: pos("BBB", 7, 3.5), Secondary: pos("BBB", 11, 3.5)},
			{Primary: pos("CCC", 2, 40), Secondary: pos("CCC", 0, 40)},
		}
		seq, totals, err := CalculateRebalance(pairs, catalogsOf())
		require.NoError(t, err)

		// after rebalancing the secondary holds ratio x primary, so the
		// amounts net out to zero
		net := decimal.Zero
		for fp := range seq {
			net = net.Add(fp.RebalanceAmount)
		}
		require.True(t, net.Abs().LessThan(decimal.New(1, -10)), net.String())
		require.True(t, totals.Ratio.IsPositive())
	})

	t.Run("sequence can be ranged over twice", func(t *testing.T) {
		pairs := []domain.ReconciledPair{
			{Primary: pos("AAA", 1, 10), Secondary: pos("AAA", 2, 10)},
			{Primary: pos("BBB", 1, 10), Secondary: pos("BBB", 0, 10)},
		}
		seq, _, err := CalculateRebalance(pairs, catalogsOf())
		require.NoError(t, err)
		require.Equal(t, "", cmp.Diff(slices.Collect(seq), slices.Collect(seq), decimalComparer))

		count := 0
		for range seq {
			count++
			break
		}
		require.Equal(t, 1, count)
	})

	t.Run("resolution order and fallback", func(t *testing.T) {
		catalogs := domain.Catalogs{
			Shares:     domain.NewInstrumentCatalog([]domain.Instrument{{Figi: "X", Name: "share X", Lot: 10}}),
			Etfs:       domain.NewInstrumentCatalog([]domain.Instrument{{Figi: "X", Name: "etf X", Lot: 1}, {Figi: "Y", Name: "etf Y", Lot: 1}}),
			Currencies: domain.NewInstrumentCatalog([]domain.Instrument{{Figi: "Z", Name: "Доллар США", Lot: 0}}),
		}

		instrument, ok := ResolveInstrument(catalogs, "X")
		require.True(t, ok)
		require.Equal(t, "share X", instrument.Name)

		instrument, ok = ResolveInstrument(catalogs, "Y")
		require.True(t, ok)
		require.Equal(t, "etf Y", instrument.Name)

		instrument, ok = ResolveInstrument(catalogs, "Z")
		require.True(t, ok)
		require.Equal(t, int64(1), instrument.Lot)

		instrument, ok = ResolveInstrument(catalogs, "RUB000UTSTOM")
		require.False(t, ok)
		require.Equal(t, domain.UnresolvedInstrumentName, instrument.Name)
		require.Equal(t, int64(1), instrument.Lot)
	})
}

func Test_lotsFor(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		price  decimal.Decimal
		lot    int64
		want   int64
	}{
		{"half rounds up", decimal.NewFromInt(25), decimal.NewFromInt(10), 1, 3},
		{"negative half rounds down", decimal.NewFromInt(-25), decimal.NewFromInt(10), 1, -3},
		{"below half", decimal.NewFromFloat(24.9), decimal.NewFromInt(10), 1, 2},
		{"lot size divides", decimal.NewFromInt(1000), decimal.NewFromInt(10), 10, 10},
		{"zero price", decimal.NewFromInt(1000), decimal.Zero, 10, 0},
		{"zero lot treated as one", decimal.NewFromInt(30), decimal.NewFromInt(10), 0, 3},
		{"zero amount", decimal.Zero, decimal.NewFromInt(10), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, lotsFor(tt.amount, tt.price, tt.lot))
		})
	}
}
