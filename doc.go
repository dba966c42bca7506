// Package costbasis computes realized and unrealized gains of a fungible
// asset using the First-In, First-Out cost basis method.
//
// The engine is a pure function of its inputs:
//   - Ledger: BuildLedger validates raw rows, keeps a single asset and orders
//     them by time, using the transaction id to break ties.
//   - Lot Book: the queue of open purchase lots of one asset, oldest first.
//   - Matcher: consumes each sale against the oldest lots, emitting one
//     RealizedGain per sale and updating the Lot Book.
//   - Valuation: ValuePosition reads a final Lot Book at a snapshot price, and
//     EstimateTax applies a caller supplied TaxRule to the realized total.
//
// All arithmetic is exact decimal arithmetic with a fixed number of fractional
// digits per run (see Config). Selling more than what was bought is an error,
// unless the caller explicitly opts in the lenient mode, in which case the
// missing quantity is matched against a zero-cost lot and the record is
// flagged.
//
// This package serves as the foundational logic for the `cb` command-line
// tool.
package costbasis
