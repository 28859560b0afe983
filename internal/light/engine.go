// Package light implements the flood-fill lighting engine: sunlight and
// three torch color channels propagated and removed across a windowed
// view of voxel/light data.
package light

import (
	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

const allTorchColorMask = uint8(1<<0 | 1<<1 | 1<<2)

var allTransparent = [6]bool{true, true, true, true, true, true}

func blockEmitsTorchAt(block *registry.Block, vx, vy, vz int32, space VoxelAccess, color voxel.Color) bool {
	if block.HasStaticTorchColor(color) {
		return true
	}
	if !block.HasDynamicTorchColor(color) {
		return false
	}
	return block.GetTorchLightLevelAtXYZ(vx, vy, vz, color, space) > 0
}

// FloodLight propagates light outward from the given source nodes until
// every reachable voxel holds its correct (possibly decremented) level.
// bounds, if non-nil, additionally restricts the fill to an X/Z rectangle
// (used when relighting only a just-loaded chunk's edge, not the whole
// loaded world).
func FloodLight(space VoxelAccess, nodes []Node, color voxel.Color, config Config, bounds *Bounds, reg *registry.Registry) {
	if len(nodes) == 0 {
		return
	}
	floodFromNodes(space, nodes, color, config, bounds, reg)
}

func floodFromNodes(space VoxelAccess, nodes []Node, color voxel.Color, config Config, bounds *Bounds, reg *registry.Registry) {
	isSunlight := color == voxel.Sunlight
	maxHeight := config.MaxHeight
	maxLightLevel := config.MaxLightLevel
	chunkSize := config.chunkSize()
	shift, hasShift := resolveChunkShift(chunkSize)

	head := 0
	for head < len(nodes) {
		n := nodes[head]
		head++

		if n.Level == 0 {
			continue
		}

		vx, vy, vz := n.Voxel[0], n.Voxel[1], n.Voxel[2]
		sourceRaw := space.GetRawVoxel(vx, vy, vz)
		sourceBlock := reg.Lookup(voxel.ExtractID(sourceRaw))

		var sourceTransparency [6]bool
		if !isSunlight && blockEmitsTorchAt(sourceBlock, vx, vy, vz, space, color) {
			sourceTransparency = allTransparent
		} else {
			sourceTransparency = sourceBlock.TransparencyFromRawVoxel(sourceRaw, reg)
		}

		keepsMaxSunlight := isSunlight && n.Level == maxLightLevel
		decremented := n.Level - 1
		if !keepsMaxSunlight && decremented == 0 {
			continue
		}

		for dirIndex, d := range neighbors {
			nvx, okX := checkedAddI32(vx, d[0])
			nvy, okY := checkedAddI32(vy, d[1])
			nvz, okZ := checkedAddI32(vz, d[2])
			if !okX || !okY || !okZ {
				continue
			}

			if nvy < 0 || nvy >= maxHeight {
				continue
			}

			ncx, ncz := mapVoxelToChunk(nvx, nvz, chunkSize, shift, hasShift)
			if ncx < config.MinChunk[0] || ncz < config.MinChunk[1] ||
				ncx > config.MaxChunk[0] || ncz > config.MaxChunk[1] {
				continue
			}

			if bounds != nil && !bounds.ContainsXZ(nvx, nvz) {
				continue
			}

			currentNeighbor := getLightLevel(space, nvx, nvy, nvz, color)

			var nRaw uint32
			var nBlock *registry.Block
			var nextLevel uint32
			if keepsMaxSunlight && d[1] == -1 {
				nRaw = space.GetRawVoxel(nvx, nvy, nvz)
				nBlock = reg.Lookup(voxel.ExtractID(nRaw))
				if !nBlock.LightReduce {
					nextLevel = n.Level
				} else {
					nextLevel = decremented
				}
				if currentNeighbor >= nextLevel {
					continue
				}
			} else {
				nextLevel = decremented
				if currentNeighbor >= nextLevel {
					continue
				}
				nRaw = space.GetRawVoxel(nvx, nvy, nvz)
				nBlock = reg.Lookup(voxel.ExtractID(nRaw))
			}

			nTransparency := nBlock.TransparencyFromRawVoxel(nRaw, reg)
			if !canEnterDirection(sourceTransparency, nTransparency, dirIndex) {
				continue
			}

			setLightLevel(space, nvx, nvy, nvz, nextLevel, color)
			nodes = append(nodes, Node{Voxel: [3]int32{nvx, nvy, nvz}, Level: nextLevel})
		}
	}
}

// RemoveLight clears the light at voxel and refloods neighbors that were
// only lit because of it.
func RemoveLight(space VoxelAccess, vxyz [3]int32, color voxel.Color, config Config, reg *registry.Registry) {
	isSunlight := color == voxel.Sunlight
	vx, vy, vz := vxyz[0], vxyz[1], vxyz[2]
	sourceLevel := getLightLevel(space, vx, vy, vz, color)
	if sourceLevel == 0 {
		return
	}

	remove := []Node{{Voxel: vxyz, Level: sourceLevel}}
	setLightLevel(space, vx, vy, vz, 0, color)

	fill := collectRefillAfterRemoval(space, remove, color, config, reg, isSunlight)
	if len(fill) == 0 {
		return
	}
	floodFromNodes(space, fill, color, config, nil, reg)
}

// RemoveLights is RemoveLight batched over many voxels, refilling once
// after all of them have been cleared.
func RemoveLights(space VoxelAccess, voxels [][3]int32, color voxel.Color, config Config, reg *registry.Registry) {
	isSunlight := color == voxel.Sunlight
	remove := make([]Node, 0, len(voxels))
	for _, v := range voxels {
		level := getLightLevel(space, v[0], v[1], v[2], color)
		if level == 0 {
			continue
		}
		remove = append(remove, Node{Voxel: v, Level: level})
		setLightLevel(space, v[0], v[1], v[2], 0, color)
	}
	if len(remove) == 0 {
		return
	}
	fill := collectRefillAfterRemoval(space, remove, color, config, reg, isSunlight)
	if len(fill) == 0 {
		return
	}
	floodFromNodes(space, fill, color, config, nil, reg)
}

func collectRefillAfterRemoval(space VoxelAccess, remove []Node, color voxel.Color, config Config, reg *registry.Registry, isSunlight bool) []Node {
	fill := make([]Node, 0, len(remove))
	maxHeight := config.MaxHeight
	maxLightLevel := config.MaxLightLevel

	head := 0
	for head < len(remove) {
		n := remove[head]
		head++
		svx, svy, svz := n.Voxel[0], n.Voxel[1], n.Voxel[2]

		for dirIndex, d := range neighbors {
			nvx, okX := checkedAddI32(svx, d[0])
			nvy, okY := checkedAddI32(svy, d[1])
			nvz, okZ := checkedAddI32(svz, d[2])
			if !okX || !okY || !okZ {
				continue
			}

			if nvy < 0 || nvy >= maxHeight {
				continue
			}

			nLevel := getLightLevel(space, nvx, nvy, nvz, color)
			if nLevel == 0 {
				continue
			}
			if isSunlight && d[1] == -1 && nLevel == n.Level && n.Level != maxLightLevel {
				continue
			}

			nRaw := space.GetRawVoxel(nvx, nvy, nvz)
			nBlock := reg.Lookup(voxel.ExtractID(nRaw))
			nTransparency := nBlock.TransparencyFromRawVoxel(nRaw, reg)
			if !canEnterIntoDirection(nTransparency, dirIndex) &&
				(isSunlight || !blockEmitsTorchAt(nBlock, nvx, nvy, nvz, space, color)) {
				continue
			}

			if nLevel < n.Level ||
				(isSunlight && d[1] == -1 && n.Level == maxLightLevel && nLevel == maxLightLevel) {
				remove = append(remove, Node{Voxel: [3]int32{nvx, nvy, nvz}, Level: nLevel})
				setLightLevel(space, nvx, nvy, nvz, 0, color)
				continue
			}

			refloods := nLevel >= n.Level
			if isSunlight && d[1] == -1 {
				refloods = nLevel > n.Level
			}
			if refloods {
				fill = append(fill, Node{Voxel: [3]int32{nvx, nvy, nvz}, Level: nLevel})
			}
		}
	}

	return fill
}

// PropagateResult holds the seed queues Propagate produces for each
// channel, ready to hand to FloodLight.
type PropagateResult struct {
	Sunlight []Node
	Red      []Node
	Green    []Node
	Blue     []Node
}

// Propagate performs the initial top-down sunlight sweep and static-torch
// seeding over a freshly generated region (min..min+shape), returning
// per-channel flood-fill seed queues. It does not itself flood — callers
// pass each returned queue to FloodLight.
func Propagate(space VoxelAccess, min [3]int32, shape [3]int32, reg *registry.Registry, config Config) PropagateResult {
	startX, startZ := min[0], min[2]
	shapeX, shapeZ := shape[0], shape[2]
	maxHeight := config.MaxHeight
	maxLightLevel := config.MaxLightLevel

	if shapeX <= 0 || shapeZ <= 0 || maxHeight <= 0 {
		return PropagateResult{}
	}

	maskLen := int64(shapeX) * int64(shapeZ)
	mask := make([]uint32, maskLen)
	for i := range mask {
		mask[i] = maxLightLevel
	}

	var result PropagateResult

	for y := maxHeight - 1; y >= 0; y-- {
		for x := int32(0); x < shapeX; x++ {
			vx := startX + x
			maskIndex := int64(x)
			for z := int32(0); z < shapeZ; z++ {
				vz := startZ + z
				current := maskIndex
				maskIndex += int64(shapeX)

				raw := space.GetRawVoxel(vx, y, vz)
				block := reg.Lookup(voxel.ExtractID(raw))

				if block.IsLight {
					var redLevel, greenLevel, blueLevel uint32
					if block.HasDynamicTorchColor(voxel.Red) || block.HasDynamicTorchColor(voxel.Green) || block.HasDynamicTorchColor(voxel.Blue) {
						redLevel, greenLevel, blueLevel = block.GetTorchLightLevelsAtXYZ(vx, y, vz, space)
					} else {
						redLevel, greenLevel, blueLevel = block.RedLightLevel, block.GreenLightLevel, block.BlueLightLevel
					}

					if redLevel > 0 {
						setLightLevel(space, vx, y, vz, redLevel, voxel.Red)
						result.Red = append(result.Red, Node{Voxel: [3]int32{vx, y, vz}, Level: redLevel})
					}
					if greenLevel > 0 {
						setLightLevel(space, vx, y, vz, greenLevel, voxel.Green)
						result.Green = append(result.Green, Node{Voxel: [3]int32{vx, y, vz}, Level: greenLevel})
					}
					if blueLevel > 0 {
						setLightLevel(space, vx, y, vz, blueLevel, voxel.Blue)
						result.Blue = append(result.Blue, Node{Voxel: [3]int32{vx, y, vz}, Level: blueLevel})
					}
				}

				t := block.TransparencyFromRawVoxel(raw, reg)
				px, py, pz, nx, ny, nz := t[0], t[1], t[2], t[3], t[4], t[5]

				if block.IsOpaque {
					mask[current] = 0
					continue
				}
				if !py || !ny {
					mask[current] = 0
					continue
				}

				currentMask := mask[current]
				if block.LightReduce {
					if currentMask != 0 {
						sunlight := currentMask - 1
						setLightLevel(space, vx, y, vz, sunlight, voxel.Sunlight)
						if sunlight > 0 {
							result.Sunlight = append(result.Sunlight, Node{Voxel: [3]int32{vx, y, vz}, Level: sunlight})
						}
						mask[current] = 0
					}
					continue
				}

				setLightLevel(space, vx, y, vz, currentMask, voxel.Sunlight)

				if currentMask == maxLightLevel {
					shouldAddMax := (x+1 < shapeX && mask[current+1] == 0 && px) ||
						(x > 0 && mask[current-1] == 0 && nx) ||
						(z+1 < shapeZ && mask[current+int64(shapeX)] == 0 && pz) ||
						(z > 0 && mask[current-int64(shapeX)] == 0 && nz)

					if shouldAddMax {
						result.Sunlight = append(result.Sunlight, Node{Voxel: [3]int32{vx, y, vz}, Level: maxLightLevel})
					}
				}
			}
		}
	}

	return result
}
