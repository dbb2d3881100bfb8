// Package core drives a segment chain as a synchronous discrete-time system.
//
// A tick runs in two phases:
//
//	evaluate: accept_i = !full_i            (pre-tick state, all segments)
//	          arrive_0 = valid_in && accept_0
//	          offer_i  = !empty_i  [|| arrive_i with fall-through]
//	          emit_i   = offer_i && accept_{i+1}   (accept_N = ready_in)
//	          arrive_{i+1} = emit_i
//	commit:   prepare one publish per segment, then publish all
//
// Flush wins over every transfer of the tick it is asserted in and leaves
// the chain empty. Each segment changes its occupancy by at most one per
// tick. Without fall-through an element advances by at most one segment per
// tick, so a chain of N segments adds up to N-1 ticks of latency compared to
// a single queue while keeping a throughput of one element per tick.
package core
