// Package imaging connects decoded raster images to the line filter.
//
// The line filter itself only knows single-channel binary grids. This package
// does everything around it: loading and caching images, the upstream
// binarization step (Canny edge detection or a global threshold), conversion
// between image.Image and linefilter.Grid, region-of-interest cropping, the
// before/after diff overlay, and PNG encoding of results.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Images returned by this package always have their bounds anchored at (0,0).
//
// # Binary Planes
//
// Binarized images are *image.Gray with 0 for background and 255 for
// foreground. ToGrid treats any non-zero gray level as foreground once the
// filter clamps it, so an already-binary input can be passed through with
// BinarizeNone.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions outside image bounds
//   - Unknown binarization methods or colours
//   - File I/O errors during image loading or saving
//   - Encoding errors during image output
package imaging
