// Package savings is the analytics engine of a personal savings tracker.
//
// It turns an append-only transaction ledger and a snapshot of market prices
// into holdings, cost basis, money-weighted returns (XIRR) and a consolidated
// net worth. Every function works on explicit inputs: the ledger, the price
// map and the reference date are always passed in, nothing is cached between
// calls.
//
// The main entry points are:
//   - BuildPositions: weighted-average cost replay of a ledger, per ticker.
//   - BuildSummary: account value, gain and lifetime XIRR.
//   - BuildAnnualXIRR: one XIRR per calendar year, anchored on yearly checkpoints.
//   - AggregateNetWorth: multi-account, multi-currency total with data-quality warnings.
//
// The Engine type binds these functions to the storage and price collaborators
// used by the `sav` command line tool.
package savings
