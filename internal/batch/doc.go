// Package batch pairs media files with like-named subtitles and runs
// independent synchronization requests on a bounded worker pool. One
// request's failure never affects its siblings; outcomes keep the input
// ordering regardless of completion order.
package batch
