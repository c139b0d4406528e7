package strategies

import scheduler "github.com/abouteiller/parsec"

// Register populates r with the five built-in scheduler strategies: "gd",
// "ip", "ap", "ll" (with "lfq" as an alias for "ll"), and "pbq".
//
// This is an explicit registry value built by the caller rather than
// package-level global state, so a process can construct more than one
// independently-configured registry (e.g. one per test case).
func Register(r *scheduler.Registry) {
	r.Add("gd", NewGD)
	r.Add("ip", NewIP)
	r.Add("ap", NewAP)
	r.Add("ll", NewLL)
	r.Add("lfq", NewLL)
	r.Add("pbq", NewPBQ)
}
