// Package codec implements the pure encoders rendered by the journey.
//
//   - [BinaryCodec]: text to fixed-width 8-bit groups and back
//   - [BuildFrequencies], [BuildTree], [BuildCodeTable]: static Huffman coding
//   - [Pack], [Unpack]: MSB-first bit packing of an encoded stream
//
// Every function here is referentially transparent; nothing holds state
// between calls.
//
// # Example
//
//	book := codec.NewCodebook("Hello")
//	bits, _ := book.Encode("Hello")
//	text, _ := book.Decode(bits)
package codec
