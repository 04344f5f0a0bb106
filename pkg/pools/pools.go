// Package pools provides size-class pooling for the scratch buffers the codec
// compresses into and decompresses from. Buffers handed out by Get are only
// valid until they are Put back.
package pools
