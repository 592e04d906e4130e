// Package virusscan is the file-content virus-scanning subsystem: a
// pluggable backend contract, a streaming client for the clamd wire
// protocol, and an orchestrator that applies organization-wide safety policy
// (size limits, timeouts, fail-open vs. fail-closed) on top of whichever
// backend is active.
//
// Callers construct one Orchestrator and share it; it is safe for concurrent
// use. Every outcome is either a Verdict or one of two error types:
// ThreatError for a detection, UnavailableError for a scanner outage. A
// detection is never suppressed by policy — fail-open governs availability,
// not findings.
//
// # Quick Start
//
//	policy, err := virusscan.PolicyFromEnv("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scanner, err := virusscan.New(ctx, policy)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	verdict, err := scanner.Scan(ctx, data, "upload.pdf")
//	switch {
//	case virusscan.IsThreat(err):
//	    // reject the upload
//	case virusscan.IsUnavailable(err):
//	    // scanner down and policy is fail-closed
//	case err == nil:
//	    _ = verdict // clean or skipped
//	}
package virusscan
