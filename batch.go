package costbasis

import (
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AssetResult is the outcome of matching the transactions of one asset.
type AssetResult struct {
	Asset   string
	Records []RealizedGain
	Book    *LotBook
}

// MatchAssets matches every asset found in raw, each one against its own Lot
// Book. Assets are independent and processed concurrently, the transactions
// of a single asset are processed sequentially.
//
// Results are sorted by asset. The first error aborts the run.
func MatchAssets(raw []RawTransaction, cfg Config, logger *zap.Logger) ([]AssetResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	assets := Assets(raw)
	results := make([]AssetResult, len(assets))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			res, err := matchAsset(raw, asset, cfg, logger.With(zap.String("asset", asset)))
			if err != nil {
				return errors.Wrapf(err, "asset %s", asset)
			}
			// each goroutine owns its own slot.
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func matchAsset(raw []RawTransaction, asset string, cfg Config, logger *zap.Logger) (AssetResult, error) {
	txs, err := BuildLedger(raw, asset)
	if err != nil {
		return AssetResult{}, err
	}
	records, book, err := MatchFIFO(txs, cfg)
	if err != nil {
		return AssetResult{}, err
	}
	for _, r := range records {
		if r.Flagged() {
			logger.Warn("sale matched against a zero-cost lot",
				zap.String("tx", r.TxID),
				zap.Stringer("shortfall", r.Shortfall))
		}
	}
	logger.Debug("asset matched",
		zap.Int("transactions", len(txs)),
		zap.Int("sales", len(records)),
		zap.Int("open_lots", book.Len()))
	return AssetResult{Asset: asset, Records: records, Book: book}, nil
}
