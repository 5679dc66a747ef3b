package geometry

// BoxRecord describes an axis aligned box body with its six faces numbered
// from firstFace in the order -X, +X, -Y, +Y, -Z, +Z
func BoxRecord(id int, name string, firstFace int, min, max [3]float64) BodyRecord {
	c := [3]float64{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2, (min[2] + max[2]) / 2}
	at := func(axis int, v float64) [3]float64 {
		p := c
		p[axis] = v
		return p
	}
	unit := func(axis int, sign float64) [3]float64 {
		var n [3]float64
		n[axis] = sign
		return n
	}
	var faces []FaceRecord
	for axis := 0; axis < 3; axis++ {
		faces = append(faces,
			FaceRecord{ID: firstFace + 2*axis, Centroid: at(axis, min[axis]), Normal: unit(axis, -1)},
			FaceRecord{ID: firstFace + 2*axis + 1, Centroid: at(axis, max[axis]), Normal: unit(axis, 1)},
		)
	}
	return BodyRecord{ID: id, Name: name, Faces: faces}
}
