// Package importer runs the full decode pipeline for one model: skeleton,
// meshes, skin binding, materials and textures. Each container is decoded
// independently so one malformed file does not stop the others.
package importer

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jmxv-importer/internal/binreader"
	"jmxv-importer/internal/bms"
	"jmxv-importer/internal/bmt"
	"jmxv-importer/internal/bsk"
	"jmxv-importer/internal/material"
	"jmxv-importer/internal/skeleton"
	"jmxv-importer/internal/skin"
	"jmxv-importer/internal/texture"
)

// Container kinds used in errors and logs.
const (
	KindSkeleton = "bsk"
	KindMesh     = "bms"
	KindMaterial = "bmt"
	KindTexture  = "ddj"
)

var (
	ErrEmptyModel     = errors.New("importer: model names no containers")
	ErrNothingDecoded = errors.New("importer: no container could be decoded")
)

// Options selects pipeline stages.
type Options struct {
	Skeleton skeleton.Options
	// Combine merges all meshes into one before binding.
	Combine bool
	Bind    bool
	// Fit scales and moves the skeleton onto the mesh bounds.
	Fit       bool
	Materials bool
	Textures  bool
	// Encoding is the text encoding label for names inside containers.
	Encoding string

	Binder *skin.Binder
	// Codec converts texture payloads. Nil uses WebP output.
	Codec texture.Codec
	// TextureDir receives converted rasters; empty writes next to each
	// source container.
	TextureDir string
}

func DefaultOptions() Options {
	return Options{
		Skeleton:  skeleton.DefaultOptions(),
		Combine:   true,
		Bind:      true,
		Fit:       true,
		Materials: true,
		Textures:  true,
	}
}

// Importer holds the per-run state: decoding options and the texture
// conversion cache. Use one Importer per goroutine.
type Importer struct {
	opts   Options
	decode []binreader.Option
	cache  *texture.Cache
	log    *logrus.Entry
}

// New validates opts and returns an Importer. A nil log discards output.
func New(opts Options, log *logrus.Entry) (*Importer, error) {
	enc, err := binreader.EncodingByName(opts.Encoding)
	if err != nil {
		return nil, err
	}
	if opts.Binder == nil {
		opts.Binder = skin.NewBinder()
	}
	if opts.Codec == nil {
		codec, err := texture.NewCodec(texture.FormatWebP)
		if err != nil {
			return nil, err
		}
		opts.Codec = codec
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Importer{
		opts:   opts,
		decode: []binreader.Option{binreader.WithEncoding(enc)},
		cache:  texture.NewCache(opts.Codec, opts.TextureDir),
		log:    log,
	}, nil
}

// Cache returns the texture conversion cache shared by every Import call
// on this Importer.
func (im *Importer) Cache() *texture.Cache { return im.cache }

// Import decodes every container of m. Container failures are recorded in
// Result.Errors; the error return is set only when m names no containers
// or none of them decoded.
func (im *Importer) Import(m Model) (*Result, error) {
	res := &Result{Name: m.Name}
	log := im.log.WithField("model", m.Name)

	attempted, decoded := 0, 0
	fail := func(kind, path string, err error) {
		err = errors.Wrapf(err, "%s %s", kind, path)
		log.WithFields(logrus.Fields{"container": kind, "path": path}).WithError(err).Warn("container failed")
		res.Errors = append(res.Errors, ContainerError{Kind: kind, Path: path, Error: err.Error()})
	}

	var asm *skeleton.Assembly
	if m.Skeleton != "" {
		attempted++
		f, err := bsk.Parse(m.Skeleton, im.decode...)
		if err != nil {
			fail(KindSkeleton, m.Skeleton, err)
		} else {
			decoded++
			asm = skeleton.Assemble(f.Bones, im.opts.Skeleton)
			for _, w := range asm.Warnings {
				res.Warnings = append(res.Warnings, w.Error())
			}
			log.WithFields(logrus.Fields{
				"bones":  asm.Stats.Bones,
				"roots":  asm.Stats.Roots,
				"groups": asm.Stats.Groups,
			}).Debug("skeleton assembled")
		}
	}

	var meshes []*bms.Mesh
	var sources []string
	for _, path := range m.Meshes {
		attempted++
		mesh, err := bms.Parse(path, im.decode...)
		if err != nil {
			fail(KindMesh, path, err)
			continue
		}
		decoded++
		meshes = append(meshes, mesh)
		sources = append(sources, path)
		log.WithFields(logrus.Fields{
			"mesh":     mesh.Name,
			"vertices": mesh.VertexCount(),
			"faces":    len(mesh.Faces),
		}).Debug("mesh decoded")
	}

	var parts []MeshResult
	var targets []*bms.Mesh
	if im.opts.Combine && len(meshes) > 1 {
		combined := bms.Combine(meshes[0].Name, meshes)
		targets = []*bms.Mesh{combined}
		parts = []MeshResult{{Sources: sources}}
	} else {
		targets = meshes
		for _, src := range sources {
			parts = append(parts, MeshResult{Sources: []string{src}})
		}
	}
	for i, mesh := range targets {
		p := &parts[i]
		p.Name = mesh.Name
		p.Material = mesh.Material
		p.MaterialIndex = -1
		p.Positions = mesh.Positions
		p.UVs = mesh.UVs
		p.Faces = mesh.Faces
		if asm != nil && im.opts.Bind {
			p.Binding = im.opts.Binder.BindOrFallback(asm.Full, mesh)
			st := p.Binding.Stats
			entry := log.WithFields(logrus.Fields{
				"mesh":     mesh.Name,
				"policy":   p.Binding.Policy,
				"remapped": st.Remapped,
				"ratio":    st.OutOfRangeRatio,
			})
			if p.Binding.Policy == skin.PolicyNearestBone {
				entry.Warn("out-of-range bone indices, weights assigned to nearest bones")
			} else {
				entry.Debug("mesh bound")
			}
		}
	}
	res.Meshes = parts

	if asm != nil {
		if im.opts.Fit && len(targets) > 0 {
			bounds := targets[0].Bounds()
			for _, t := range targets[1:] {
				b := t.Bounds()
				if !b.Empty() {
					bounds.Extend(b.Min)
					bounds.Extend(b.Max)
				}
			}
			if fit, ok := skeleton.FitToBounds(asm.Full, bounds); ok {
				asm.Full.Apply(fit)
				res.Fit = &fit
			}
		}
		res.Skeleton = &SkeletonResult{
			Source: m.Skeleton,
			Bones:  asm.Full.Bones,
			Groups: asm.Groups,
			Stats:  asm.Stats,
		}
	}

	if m.Material != "" && im.opts.Materials {
		attempted++
		if err := im.importMaterials(m, res, log); err != nil {
			fail(KindMaterial, m.Material, err)
		} else {
			decoded++
		}
	}

	if attempted == 0 {
		return nil, ErrEmptyModel
	}
	if decoded == 0 {
		return res, ErrNothingDecoded
	}
	return res, nil
}

func (im *Importer) importMaterials(m Model, res *Result, log *logrus.Entry) error {
	f, err := bmt.Parse(m.Material, im.decode...)
	if err != nil {
		return err
	}

	var idx *texture.Index
	if im.opts.Textures && len(m.Textures) > 0 {
		idx = texture.NewIndex(nil)
		for _, p := range m.Textures {
			info, err := os.Stat(p)
			switch {
			case err != nil:
				res.Warnings = append(res.Warnings, errors.Wrap(err, KindTexture).Error())
			case info.IsDir():
				if err := idx.AddDir(p); err != nil {
					res.Warnings = append(res.Warnings, errors.Wrapf(err, "%s dir %s", KindTexture, p).Error())
				}
			default:
				idx.Add(p)
			}
		}
	}

	var cache *texture.Cache
	if idx != nil {
		cache = im.cache
	}
	mats, st, warnings := material.Resolve(f, idx, cache)
	for _, w := range warnings {
		log.WithError(w).Warn("texture skipped")
		res.Warnings = append(res.Warnings, w.Error())
	}
	res.Materials = mats
	res.MaterialStats = &st

	for i := range res.Meshes {
		mr := &res.Meshes[i]
		mr.MaterialIndex, mr.MaterialMatch = material.Match(mr.Material, mats)
		if mr.MaterialMatch == material.MatchFallback && mr.Material != "" {
			log.WithFields(logrus.Fields{"mesh": mr.Name, "material": mr.Material}).Warn("material not found, using first")
		}
	}
	return nil
}
