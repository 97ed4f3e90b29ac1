// Package document lays several page images out on one pyramid.
//
// Pages are placed row by row on a grid of equal cells, each cell as large as
// the largest page, with an optional gap around every cell. The grid lives in
// the pyramid's total space; the canvas raster underneath is only a blank
// background at 1/squeeze of that size, and each page becomes an Overlay at
// native resolution. A viewer zoomed out sees the grid; zoomed in, each page
// keeps its full detail.
package document
