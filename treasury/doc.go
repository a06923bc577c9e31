/*
Package treasury implements the accounting core of a reserve-backed token.

Treasury mints a synthetic unit 1:1 against deposits of a reference asset,
burns it on redemption and periodically releases reserve assets to a
beneficiary as a percentage of the accrued revenue. All state of a single
treasury is stored in a Record which is mutated only by the Processor.

Every operation is processed as one indivisible unit:

  - the caller is authorized against the record (signature presence,
    signer set membership, emergency or compliance authority);
  - value-moving operations are rejected while the treasury is paused;
  - compliance, solvency and payout guards are checked;
  - token primitives are invoked through the TokenMover;
  - the record is replaced and audit entries are appended.

If anything fails, the record passed to Processor.Process is left as is and
the host is expected to discard all effects of the TokenMover and AuditLog
made in the same scope.

Reserve ratio

Reserve ratio is reserves to circulation ratio in basis points, 10000 when
nothing is in circulation and never more than 10000. Withdrawals must keep it
above the configured minimum while anything is in circulation.

Signer threshold

Threshold of the signer set is validated on initialization and updates, but
operations require only one witnessed signer. Collecting Threshold approvals
is a policy of the submission layer, see cosign package.
*/
package treasury
