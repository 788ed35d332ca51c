// Package analytics is the statistics engine of Market Pulse. It derives
// descriptive statistics, correlation matrices, rolling volatility,
// Sharpe ratios, betas, drawdowns, and trend regressions from the price
// and return frames produced by the series package.
//
// The numerically heavy lifting is delegated to gonum's stat packages;
// this package contributes the closed-form financial formulas, the
// explicit handling of missing observations, and the zero-variance
// guards that keep results free of NaN and Inf.
//
// Every function here is a stateless pure transformation over in-memory
// data. There is no I/O, no retained state, and no shared mutable
// structure between calls, so concurrent callers need no locking.
package analytics
