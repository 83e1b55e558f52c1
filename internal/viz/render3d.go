package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/fzx/internal/fzx"
)

// Camera orbits a center point. View() maps world coordinates into camera
// space, which Project then maps onto the canvas with a perspective divide.
type Camera struct {
	Center           mgl64.Vec3
	Distance, Near   float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(1e3, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(1e-3, c.Zoom/1.2) }

// View is the world-to-camera matrix: recenter, scale by zoom, rotate.
func (c *Camera) View() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DZ(c.RotZ).
		Mul4(mgl64.HomogRotate3DY(c.RotY)).
		Mul4(mgl64.HomogRotate3DX(c.RotX))
	return rot.
		Mul4(mgl64.Scale3D(c.Zoom, c.Zoom, c.Zoom)).
		Mul4(mgl64.Translate3D(-c.Center[0], -c.Center[1], -c.Center[2]))
}

// Fit centers the camera on box and picks a zoom that keeps it on screen.
func (c *Camera) Fit(box fzx.BBox) {
	if box.IsEmpty() {
		return
	}
	c.Center = box.Center()
	size := box.Size()
	extent := math.Max(size[0], math.Max(size[1], size[2]))
	if extent > 0 {
		c.Zoom = 2.4 / extent
	}
}

// Project maps a camera-space point to canvas sub-pixels. It returns the
// pixel, the depth and whether the point is in front of the camera and on
// the canvas.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	dist := c.Distance
	if p[2] >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - p[2])
	pScale := float64(min(sw, sh)) / 3.0
	sx := int(math.Round(p[0]*scale*pScale)) + sw/2
	sy := int(math.Round(-p[1]*scale*pScale)) + sh/2
	return sx, sy, p[2], sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Edge is a segment in camera space drawn with one ink.
type Edge struct {
	Start, End mgl64.Vec3
	Ink        int
}

// BoxEdges returns the twelve edges of box after transforming its corners
// by m. Corner i takes Max on axis k when bit k of i is set, so edges join
// corners that differ in exactly one bit.
func BoxEdges(box fzx.BBox, m mgl64.Mat4, ink int) []Edge {
	if box.IsEmpty() {
		return nil
	}
	corners := box.Corners()
	var world [8]mgl64.Vec3
	for i, p := range corners {
		world[i] = m.Mul4x1(p.Vec4(1)).Vec3()
	}

	edges := make([]Edge, 0, 12)
	for i := 0; i < 8; i++ {
		for k := 0; k < 3; k++ {
			if i&(1<<k) == 0 {
				edges = append(edges, Edge{Start: world[i], End: world[i|1<<k], Ink: ink})
			}
		}
	}
	return edges
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	ink            int
}

// Render3D draws edges far to near so nearer edges own shared cells.
func Render3D(c *Canvas, edges []Edge, cam *Camera) {
	if c == nil || cam == nil {
		return
	}
	sw, sh := c.PixelSize()
	proj := make([]projectedEdge, 0, len(edges))
	for _, e := range edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Ink})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.SetInk(e.ink)
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// AxesEdges returns the three world axes of length l through the origin.
func AxesEdges(view mgl64.Mat4, l float64) []Edge {
	o := view.Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3()
	return []Edge{
		{Start: o, End: view.Mul4x1(mgl64.Vec4{l, 0, 0, 1}).Vec3(), Ink: InkFrame},
		{Start: o, End: view.Mul4x1(mgl64.Vec4{0, l, 0, 1}).Vec3(), Ink: InkFrame},
		{Start: o, End: view.Mul4x1(mgl64.Vec4{0, 0, l, 1}).Vec3(), Ink: InkFrame},
	}
}

// CrossEdges marks a camera-space point with two short screen-aligned
// segments, for bodies without a bounding box.
func CrossEdges(p mgl64.Vec3, r float64, ink int) []Edge {
	return []Edge{
		{Start: p.Sub(mgl64.Vec3{r, 0, 0}), End: p.Add(mgl64.Vec3{r, 0, 0}), Ink: ink},
		{Start: p.Sub(mgl64.Vec3{0, r, 0}), End: p.Add(mgl64.Vec3{0, r, 0}), Ink: ink},
	}
}
