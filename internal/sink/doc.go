// Package sink provides the tile destinations a pyramid is cut into.
//
// Every type here implements pyramid.Sink:
//   - Discard drops tiles, optionally logging each one
//   - File writes tiles to <base>/<level>/<col>_<row>.<format>
//   - Archive streams tiles into a zstd-compressed tar file
//   - Counter records how many tiles each level produced
//
// Tee fans a tile out to several sinks. File and Archive can also record a
// BLAKE3 digest of every encoded tile in a Manifest, which writes a checksum
// file in the format b3sum --check reads.
package sink
