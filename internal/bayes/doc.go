// Package bayes implements the online Naive-Bayes letter/noise model.
//
// A Store accumulates the sufficient statistics of the model one labeled
// pixel at a time: how often a labeled pixel was a letter, and, for every
// offset of the square neighborhood around it, how often that offset held ink
// given each class. Posterior combines those counts under a per-offset
// conditional independence assumption.
//
// Every counter starts from a smoothing seed (hits = 1, total = 2) so that
// every ratio is defined and strictly inside (0, 1) before any observation,
// and a freshly created store answers exactly 0.5 for any neighborhood.
//
// The labeling driver owns the Store and is its only writer; classifiers
// borrow it read-only. Record takes the write lock and Posterior the read
// lock, so a long-running session may classify while it trains.
package bayes
