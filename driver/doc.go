// Package driver defines the contract between sharetex and the graphics
// backends that own GPU memory.
//
// A backend provides two halves:
//   - the primary API, which allocates texture memory and hands out share
//     tokens ([Instance], [Device], [Texture]);
//   - the interop bridge to the secondary API, which registers primary
//     textures against secondary texture names and arbitrates access
//     ([Interop]).
//
// The interop half is optional. A backend without interop support returns
// nil from [Driver.Interop], and sharetex degrades linked-texture operations
// to "not supported" instead of failing.
//
//	          +-------------------+
//	          |     sharetex      |
//	          | (Service, locks)  |
//	          +---------+---------+
//	                    |
//	      +-------------+-------------+
//	      |                           |
//	+-----v------+             +------v------+
//	|  Instance  |             |   Interop   |
//	|  Device    |             | (optional)  |
//	|  Texture   |             |             |
//	+------------+             +-------------+
//	 primary API                secondary API
//
// All handles crossing this boundary are opaque integers. The zero value of
// each handle type means "absent".
package driver
