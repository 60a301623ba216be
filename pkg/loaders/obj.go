package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/scene"
)

// OBJData contains the triangulated geometry and materials of an OBJ file
type OBJData struct {
	Triangles []scene.Triangle
	Materials []scene.Material
}

// LoadOBJ parses a Wavefront OBJ file into triangles with per-vertex
// normals and UVs, resolving materials from referenced MTL files. Faces
// with more than three vertices are fan-triangulated. Missing normals fall
// back to the face normal.
func LoadOBJ(filename string) (*OBJData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	data := &OBJData{}
	materialIndex := make(map[string]int)
	currentMaterial := scene.NoMaterial

	var positions, normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		keyword, args := fields[0], fields[1:]

		switch keyword {
		case "v":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad vertex: %w", filename, lineNo, err)
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad normal: %w", filename, lineNo, err)
			}
			normals = append(normals, v)
		case "vt":
			if len(args) < 2 {
				return nil, fmt.Errorf("%s:%d: bad texture coordinate", filename, lineNo)
			}
			u, err1 := parseFloat(args[0])
			v, err2 := parseFloat(args[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%s:%d: bad texture coordinate", filename, lineNo)
			}
			uvs = append(uvs, mgl32.Vec2{u, v})
		case "f":
			if len(args) < 3 {
				return nil, fmt.Errorf("%s:%d: face needs at least three vertices", filename, lineNo)
			}
			corners := make([]faceCorner, len(args))
			for i, arg := range args {
				c, err := parseFaceCorner(arg, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", filename, lineNo, err)
				}
				corners[i] = c
			}
			for i := 1; i+1 < len(corners); i++ {
				tri := buildTriangle(positions, normals, uvs, corners[0], corners[i], corners[i+1], currentMaterial)
				data.Triangles = append(data.Triangles, tri)
			}
		case "usemtl":
			if len(args) == 1 {
				if i, ok := materialIndex[args[0]]; ok {
					currentMaterial = i
				} else {
					currentMaterial = scene.NoMaterial
				}
			}
		case "mtllib":
			for _, lib := range args {
				path := filepath.Join(filepath.Dir(filename), lib)
				materials, err := LoadMTL(path)
				if err != nil {
					return nil, fmt.Errorf("failed to load material library %s: %w", lib, err)
				}
				for _, m := range materials {
					materialIndex[m.Name] = len(data.Materials)
					data.Materials = append(data.Materials, m)
				}
			}
		}
		// Groups, objects and smoothing statements are ignored
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ file: %w", err)
	}

	return data, nil
}

// faceCorner holds resolved zero-based attribute indices (-1 for absent)
type faceCorner struct {
	position int
	uv       int
	normal   int
}

// parseFaceCorner parses one "v", "v/vt", "v//vn" or "v/vt/vn" reference,
// resolving negative (relative) indices
func parseFaceCorner(s string, numPositions, numUVs, numNormals int) (faceCorner, error) {
	corner := faceCorner{position: -1, uv: -1, normal: -1}
	parts := strings.Split(s, "/")

	resolve := func(part string, count int) (int, error) {
		if part == "" {
			return -1, nil
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return -1, fmt.Errorf("bad face index %q", part)
		}
		if i < 0 {
			i = count + i
		} else {
			i--
		}
		if i < 0 || i >= count {
			return -1, fmt.Errorf("face index %q out of range", part)
		}
		return i, nil
	}

	var err error
	if corner.position, err = resolve(parts[0], numPositions); err != nil {
		return corner, err
	}
	if corner.position < 0 {
		return corner, fmt.Errorf("face corner %q has no position", s)
	}
	if len(parts) > 1 {
		if corner.uv, err = resolve(parts[1], numUVs); err != nil {
			return corner, err
		}
	}
	if len(parts) > 2 {
		if corner.normal, err = resolve(parts[2], numNormals); err != nil {
			return corner, err
		}
	}
	return corner, nil
}

func buildTriangle(positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, a, b, c faceCorner, material int) scene.Triangle {
	pa, pb, pc := positions[a.position], positions[b.position], positions[c.position]

	faceNormal := pb.Sub(pa).Cross(pc.Sub(pa))
	if faceNormal.Len() > 0 {
		faceNormal = faceNormal.Normalize()
	}
	pick := func(corner faceCorner) mgl32.Vec3 {
		if corner.normal >= 0 {
			return normals[corner.normal]
		}
		return faceNormal
	}
	pickUV := func(corner faceCorner) mgl32.Vec2 {
		if corner.uv >= 0 {
			return uvs[corner.uv]
		}
		return mgl32.Vec2{}
	}

	return scene.NewTriangle(pa, pb, pc,
		[3]mgl32.Vec3{pick(a), pick(b), pick(c)},
		[3]mgl32.Vec2{pickUV(a), pickUV(b), pickUV(c)},
		material)
}

// LoadMTL parses a Wavefront material library. Texture paths are resolved
// relative to the MTL file.
func LoadMTL(filename string) ([]scene.Material, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open MTL file: %w", err)
	}
	defer file.Close()

	var materials []scene.Material
	current := func() *scene.Material {
		if len(materials) == 0 {
			return nil
		}
		return &materials[len(materials)-1]
	}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		keyword, args := fields[0], fields[1:]

		if keyword == "newmtl" {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			materials = append(materials, scene.Material{Name: name})
			continue
		}

		m := current()
		if m == nil {
			continue // statements before the first newmtl
		}

		switch keyword {
		case "Kd":
			if v, err := parseVec3(args); err == nil {
				m.Diffuse = &v
			}
		case "Ks":
			if v, err := parseVec3(args); err == nil {
				m.Specular = &v
			}
		case "Ns":
			if v, err := parseFloatArg(args); err == nil {
				m.SpecularExponent = &v
			}
		case "Ni":
			if v, err := parseFloatArg(args); err == nil {
				m.RefractionIndex = &v
			}
		case "d":
			// MTL dissolve: 1 is opaque, matching the renderer convention
			if v, err := parseFloatArg(args); err == nil {
				m.Dissolve = &v
			}
		case "Tr":
			// Inverted dissolve used by some exporters
			if v, err := parseFloatArg(args); err == nil {
				d := 1 - v
				m.Dissolve = &d
			}
		case "illum":
			if len(args) == 1 {
				if v, err := strconv.Atoi(args[0]); err == nil {
					m.Illum = scene.IlluminationModel(v)
				}
			}
		case "map_Kd":
			if len(args) > 0 {
				path := filepath.Join(filepath.Dir(filename), args[len(args)-1])
				texture, err := LoadImage(path)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", filename, lineNo, err)
				}
				m.Texture = texture
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read MTL file: %w", err)
	}

	return materials, nil
}

func parseVec3(args []string) (mgl32.Vec3, error) {
	if len(args) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected three components, got %d", len(args))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := parseFloat(args[i])
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

func parseFloatArg(args []string) (float32, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one value, got %d", len(args))
	}
	return parseFloat(args[0])
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return float32(f), nil
}
