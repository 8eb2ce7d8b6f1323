// Package event defines the test lifecycle events dromus renders.
//
// Events form a closed set:
//   - SuiteStarted / SuiteEnded: suite boundaries, the root suite spans a run
//   - TestStarted: a test is about to run on a task
//   - TestEnded: a test finished with an Outcome and captured exceptions
//
// Every event carries the identifiers it needs, including the task id;
// nothing is inferred from which worker delivered it.
package event
