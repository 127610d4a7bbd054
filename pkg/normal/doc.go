// Package normal estimates normal maps from selection shapes and rescales
// existing normal maps.
//
// Normals are encoded per pixel as RGB with each component c in [-1,1]
// stored as round(255·(c·0.5+0.5)). X grows to the right, Y grows upward
// (against raster rows) and Z points out of the image.
//
// The Estimator walks outward from every selected pixel looking for the
// selection boundary and tilts the normal according to where it finds
// unselected space. The Renormalizer decodes existing pixels, rescales the
// vectors to a fixed length and encodes them again. Both read only their
// inputs and write a separate destination, and both process rows
// concurrently.
package normal
