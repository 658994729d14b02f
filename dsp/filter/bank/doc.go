// Package bank builds banks of second-order Butterworth filters over a
// geometric sweep of cutoff frequencies.
//
// [GenerateRange] produces the sweep at a fixed relative precision (for
// example every 1 % between 1.5 kHz and 15 kHz, i.e. 4500 to 45000 RPM on
// an 8-pulse rotor with 250 kHz sampling). [New] designs one section per
// cutoff; [Bank.Select] picks the band suited to a detected frequency.
package bank
