// Package workspace provides the typed scoped-buffer pool used by the
// supernodal kernels for their temporaries (generated elements, row maps,
// local right-hand sides).
//
// Typical use ties a lease to the acquiring scope:
//
//	contrib := workspace.Acquire[float64](ws, r*r)
//	defer contrib.Release()
//
// Deferred releases run in reverse order of acquisition, which keeps the
// pool usage strictly nested per call. Buffers are not zeroed on reuse.
package workspace
