// Package dataset holds measured impedance spectra and loads them from disk.
//
// A Spectrum is one source file: a frequency axis shared by one or more
// repeated measurements. Every repeat becomes a Record identified by
// "<source>_<index>", the key under which its fit results are stored.
//
// Files are plain CSV with the frequency in Hz in the first column followed by
// one (real, imaginary) column pair per repeat:
//
//	frequency,real,imag,real,imag
//	100,1021.5,-35.2,1019.8,-34.9
//
// The header row is optional. Frequencies are converted to angular frequency
// on load.
package dataset
