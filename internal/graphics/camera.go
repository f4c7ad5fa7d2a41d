package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PitchLimit keeps the fly camera short of looking straight up or down.
const PitchLimit = 1.5

// Camera is a free-flying perspective camera. Yaw and Pitch are radians;
// yaw 0 looks down -Z.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	AspectRatio float32
	FOV         float32 // degrees
	NearPlane   float32
	FarPlane    float32

	Speed       float32 // units per second
	Sensitivity float32 // radians per pixel
}

// NewCamera returns a camera at position looking down -Z.
func NewCamera(width, height int, position mgl32.Vec3) *Camera {
	c := &Camera{
		Position:    position,
		FOV:         70,
		NearPlane:   0.05,
		FarPlane:    500,
		Speed:       6,
		Sensitivity: 0.0025,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Zero heights are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

// Front is the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw, pitch := float64(c.Yaw), float64(c.Pitch)
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Right is the unit horizontal vector to the right of Front.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Look turns the camera by a cursor delta in pixels. Moving the cursor up
// (negative dy) looks up.
func (c *Camera) Look(dx, dy float64) {
	c.Yaw += float32(dx) * c.Sensitivity
	c.Pitch -= float32(dy) * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -PitchLimit, PitchLimit)
	c.Yaw = float32(math.Mod(float64(c.Yaw), 2*math.Pi))
}

// Move flies the camera. forward, right and up are in [-1, 1]; forward and
// right follow the view direction, up is world +Y.
func (c *Camera) Move(forward, right, up float32, dt float64) {
	step := c.Speed * float32(dt)
	delta := c.Front().Mul(forward).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
	if delta.Len() == 0 {
		return
	}
	c.Position = c.Position.Add(delta.Normalize().Mul(step))
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	if d.Len() == 0 {
		return
	}
	d = d.Normalize()
	c.Pitch = mgl32.Clamp(float32(math.Asin(float64(d.Y()))), -PitchLimit, PitchLimit)
	c.Yaw = float32(math.Atan2(float64(d.X()), float64(-d.Z())))
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
