/*
Package dump provides I/O operations for exported treasury states.

A dump captures the treasury record together with its audit trails: payouts,
compliance entries and reserve audits. Dumps are used to review the treasury
outside of the ledger host and to reproduce its state in tests.

The package works with dumps stored in the file system using human-readable
encoding. Amounts are written as decimals according to the precision of the
synthetic unit.
*/
package dump
