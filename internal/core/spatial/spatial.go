// Package spatial holds the small amount of 3D geometry the simulation
// core needs: quaternion frame composition and the line-of-sight math
// behind occlusion-aware object placement.
package spatial

import (
	"errors"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoPlacement is returned when no non-occluding position could be found
// for a candidate object within the attempt budget.
var ErrNoPlacement = errors.New("no non-occluding placement found")

// clearance is the extra margin, beyond an object's bounding radius, that
// must separate it from a view corridor before the view counts as clear.
const clearance = 0.05

// maxPlacementAttempts bounds the deterministic search in ClearPlacement.
const maxPlacementAttempts = 16

// Rotate applies the unit quaternion q to the vector v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// RotationAbout returns the unit quaternion for a rotation of the given
// angle, in radians, about the given axis.
func RotationAbout(angle float64, axis r3.Vec) quat.Number {
	return quat.Number(r3.NewRotation(angle, axis))
}

// Compose returns the rotation that applies b first, then a.
func Compose(a, b quat.Number) quat.Number {
	return quat.Mul(a, b)
}

// SegmentDistance returns the distance from p to the segment ab.
func SegmentDistance(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	ap := r3.Sub(p, a)
	den := r3.Dot(ab, ab)
	if den == 0 {
		return r3.Norm(ap)
	}
	t := r3.Dot(ap, ab) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := r3.Add(a, r3.Scale(t, ab))
	return r3.Norm(r3.Sub(p, closest))
}

// Occludes reports whether a sphere of the given radius centered at center
// blocks the straight view from viewpoint to target.
func Occludes(center r3.Vec, radius float64, viewpoint, target r3.Vec) bool {
	return SegmentDistance(center, viewpoint, target) < radius+clearance
}

// ClearPlacement returns a position for a sphere of the given radius,
// starting from candidate, that does not occlude the view of target from
// any of the viewpoints. The candidate is pushed out of the view corridor
// in deterministic steps; if the budget runs out, ErrNoPlacement is
// returned.
func ClearPlacement(candidate r3.Vec, radius float64, viewpoints []r3.Vec, target r3.Vec) (r3.Vec, error) {
	pos := candidate
	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		blocked := blockedViewpoint(pos, radius, viewpoints, target)
		if blocked == nil {
			return pos, nil
		}
		pos = r3.Add(pos, r3.Scale(radius+clearance, escapeDirection(pos, *blocked, target)))
	}
	return r3.Vec{}, ErrNoPlacement
}

func blockedViewpoint(pos r3.Vec, radius float64, viewpoints []r3.Vec, target r3.Vec) *r3.Vec {
	for _, vp := range viewpoints {
		if Occludes(pos, radius, vp, target) {
			blocked := vp
			return &blocked
		}
	}
	return nil
}

// escapeDirection picks a unit vector pointing out of the view corridor
// between viewpoint and target, as seen from pos.
func escapeDirection(pos, viewpoint, target r3.Vec) r3.Vec {
	ray := r3.Sub(target, viewpoint)
	offset := r3.Sub(pos, viewpoint)
	if n := r3.Norm(ray); n > 0 {
		axis := r3.Scale(1/n, ray)
		lateral := r3.Sub(offset, r3.Scale(r3.Dot(offset, axis), axis))
		if r3.Norm(lateral) > 1e-12 {
			return r3.Unit(lateral)
		}
		// Dead center on the ray: any direction orthogonal to it works.
		return r3.Unit(orthogonal(axis))
	}
	return r3.Vec{X: 1}
}

func orthogonal(v r3.Vec) r3.Vec {
	other := r3.Vec{X: 1}
	if v.Y == 0 && v.Z == 0 {
		other = r3.Vec{Y: 1}
	}
	return r3.Cross(v, other)
}
