// Package crawler classifies requests as crawler traffic.
//
// Classification is a baseline check OR-ed with a fixed user-agent keyword
// list. The baseline is evaluated first; the keyword list is only consulted
// when the baseline says no.
package crawler
