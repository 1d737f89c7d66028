package treebuild

import (
	"context"
	"log/slog"
	"time"

	"kachef/internal/admission"
	"kachef/internal/curation"
	"kachef/internal/language"
	"kachef/internal/logging"
	"kachef/internal/nodes"
	"kachef/internal/rawstore"
	"kachef/internal/services"
)

// Result is the outcome of one build.
type Result struct {
	Root     *nodes.Topic
	Included int
	Excluded map[admission.Reason]int
	// Unused lists directive slugs the walk never reached.
	Unused   []string
	Duration time.Duration
}

type builder struct {
	rc         *RunContext
	store      *rawstore.Store
	splicer    *curation.Splicer
	directives *curation.Directives
	onPath     map[string]bool
	result     *Result
	logger     *slog.Logger
}

// Build reconstructs the tree for rc. It fails only when rc is incomplete or
// ctx is cancelled.
func Build(ctx context.Context, rc *RunContext) (*Result, error) {
	if rc == nil || rc.Store == nil || rc.Factory == nil || rc.Filter == nil {
		return nil, services.Wrap(services.ErrConfiguration, "treebuild", "build", "run context needs a store, factory and filter", nil)
	}
	start := time.Now()
	logger := logging.NewComponentLogger(rc.Logger, "treebuild")
	layer := rc.Store.Layer()
	directives := curation.NewDirectives(nil)
	if rc.Curation != nil {
		directives = rc.Curation.Directives(rc.Language, rc.Variant)
	}
	b := &builder{
		rc:         rc,
		store:      layer,
		splicer:    curation.NewSplicer(layer, rc.Logger),
		directives: directives,
		onPath:     map[string]bool{},
		result:     &Result{Excluded: map[admission.Reason]int{}},
		logger:     logger,
	}

	rootRec := layer.Root()
	node, _ := rc.Factory.Build(rootRec)
	root := node.(*nodes.Topic)
	b.include(0, rootRec)
	b.onPath[rootRec.ID] = true
	b.children(ctx, root, rootRec, 1, nil)
	_, unordered := layer.Domains()
	for _, domain := range unordered {
		b.exclude(1, domain, admission.DomainNotOrdered)
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "treebuild", "build", "cancelled", err)
	}

	b.result.Root = root
	b.result.Unused = directives.Pending()
	b.result.Duration = time.Since(start)
	logger.Info("tree built",
		logging.String(logging.FieldLanguage, rc.Language),
		logging.String(logging.FieldVariant, rc.Variant),
		logging.Int("included", b.result.Included),
		logging.Int("excluded", b.excludedTotal()),
		logging.Int("top_level", len(root.Children)),
		logging.String("duration", b.result.Duration.Round(time.Millisecond).String()),
	)
	if len(b.result.Unused) > 0 {
		logger.Debug("curation directives not reached", logging.Any("slugs", b.result.Unused))
	}
	return b.result, nil
}

// visit admits rec and attaches whatever it yields to parent.
func (b *builder) visit(ctx context.Context, parent *nodes.Topic, rec *rawstore.Record, depth int, ancestors []string) {
	if reason := b.rc.Filter.Record(rec, b.splicer.Exempt(rec.ID)); !reason.OK() {
		b.exclude(depth, rec, reason)
		return
	}
	if !rec.Kind.IsTopicLike() {
		if leaf := b.leaf(ctx, parent, rec, depth, ancestors); leaf != nil {
			parent.Add(leaf)
		}
		return
	}
	if specs, ok := b.directives.Take(rec.Slug); ok {
		b.logger.Debug("splicing curated subtree",
			logging.String(logging.FieldSlug, rec.Slug),
			logging.String("parent_slug", parent.Slug),
			logging.Int("specs", len(specs)),
		)
		for _, spliced := range b.splicer.Splice(parent.Slug, specs) {
			b.visit(ctx, parent, spliced, depth, ancestors)
		}
		return
	}
	if topic := b.topic(ctx, rec, depth, ancestors, b.splicer.Produced(rec.ID)); topic != nil {
		parent.Add(topic)
	}
}

func (b *builder) topic(ctx context.Context, rec *rawstore.Record, depth int, ancestors []string, spliced bool) *nodes.Topic {
	if b.onPath[rec.ID] {
		logging.WarnWithContext(b.logger, "topic cycle in snapshot", "topic_cycle",
			logging.String("id", rec.ID),
			logging.String(logging.FieldSlug, rec.Slug),
		)
		return nil
	}
	node, reason := b.rc.Factory.Build(rec)
	if !reason.OK() {
		b.exclude(depth, rec, reason)
		return nil
	}
	topic := node.(*nodes.Topic)
	if spliced {
		topic.ID = rec.ID
	}
	b.include(depth, rec)

	b.onPath[rec.ID] = true
	path := append(append(make([]string, 0, len(ancestors)+1), ancestors...), rec.Slug)
	b.children(ctx, topic, rec, depth+1, path)
	delete(b.onPath, rec.ID)

	if len(topic.Children) == 0 {
		b.result.Included--
		b.exclude(depth, rec, admission.EmptyTopic)
		return nil
	}
	return topic
}

func (b *builder) children(ctx context.Context, topic *nodes.Topic, rec *rawstore.Record, depth int, ancestors []string) {
	for _, ref := range rec.Children {
		if ctx.Err() != nil {
			return
		}
		child, ok := b.store.Get(ref.ID)
		if !ok {
			b.missingChild(rec, ref)
			continue
		}
		b.visit(ctx, topic, child, depth, ancestors)
	}
}

func (b *builder) missingChild(parent *rawstore.Record, ref rawstore.ChildRef) {
	if ref.Kind.IsUnsupported() {
		return
	}
	logging.WarnWithContext(b.logger, "missing child record", "missing_child",
		logging.String("id", ref.ID),
		logging.String(logging.FieldKind, string(ref.Kind)),
		logging.String("parent_id", parent.ID),
		logging.String("parent_slug", parent.Slug),
		logging.String(logging.FieldErrorHint, "the snapshot references an id it does not contain; refresh the cached export"),
	)
}

func (b *builder) leaf(ctx context.Context, parent *nodes.Topic, rec *rawstore.Record, depth int, ancestors []string) nodes.Node {
	node, reason := b.rc.Factory.Build(rec)
	if !reason.OK() {
		b.exclude(depth, rec, reason)
		return nil
	}
	switch n := node.(type) {
	case *nodes.Video:
		if copied := b.referenceCopy(ctx, n, rec, depth); copied != nil {
			parent.Add(copied)
		}
		reason, subs := b.rc.Filter.Video(ctx, admission.VideoFacts{
			YouTubeID:           n.YouTubeID,
			TranslatedYouTubeID: n.TranslatedYouTubeID,
			AudioLanguage:       n.AudioLanguage,
			HasDownload:         n.HasDownload(),
		})
		if !reason.OK() {
			b.exclude(depth, rec, reason)
			return nil
		}
		n.Subtitles = b.rc.Filter.SubtitleFiles(subs)
	case *nodes.Exercise:
		if b.rc.Questions != nil {
			questions, err := b.rc.Questions.Questions(ctx, n)
			if err != nil {
				logging.WarnWithContext(b.logger, "assessment items unavailable", "assessment_fetch_failed",
					logging.String(logging.FieldSlug, n.Slug),
					logging.Error(err),
					logging.String(logging.FieldImpact, "exercise left out of the tree"),
				)
			}
			if len(questions) == 0 {
				b.exclude(depth, rec, admission.NoQuestions)
				return nil
			}
			n.Questions = questions
		}
	case *nodes.Article:
		b.exclude(depth, rec, admission.UnsupportedKind)
		return nil
	}
	b.include(depth, rec)
	if b.rc.Collector != nil {
		b.rc.Collector.Observe(node, ancestors)
	}
	return node
}

// DubbedTitleSuffix marks a dubbed video that has a reference-audio copy
// next to it.
const DubbedTitleSuffix = " -dubbed(KY)"

// ReferenceCopyID is the node id of the reference-audio copy of a video.
func ReferenceCopyID(videoID, lang string) string {
	return videoID + "_" + lang
}

// referenceCopy returns the reference-audio twin of a dubbed video when the
// run asks for one and the twin passes the video gates. The dubbed video is
// retitled whenever a twin is considered.
func (b *builder) referenceCopy(ctx context.Context, dubbed *nodes.Video, rec *rawstore.Record, depth int) *nodes.Video {
	ref := b.rc.Factory.ReferenceLanguage
	if ref == "" {
		ref = "en"
	}
	switch {
	case !b.rc.EnglishSubtitles,
		language.Normalize(b.rc.Language) == language.Normalize(ref),
		dubbed.YouTubeID == "",
		dubbed.TranslatedYouTubeID == dubbed.YouTubeID,
		language.MatchesAudio(dubbed.AudioLanguage, ref):
		return nil
	}
	twin := *dubbed
	twin.ID = ReferenceCopyID(dubbed.ID, ref)
	twin.TranslatedYouTubeID = dubbed.YouTubeID
	twin.AudioLanguage = ref
	// Upstream renditions are the dubbed ones; the twin is fetched by id.
	twin.DownloadURLs = nil
	twin.Dubbed, twin.DubSubbed = false, false
	dubbed.Title += DubbedTitleSuffix

	reason, subs := b.rc.Filter.Video(ctx, admission.VideoFacts{
		YouTubeID:           twin.YouTubeID,
		TranslatedYouTubeID: twin.TranslatedYouTubeID,
		AudioLanguage:       twin.AudioLanguage,
		HasDownload:         true,
	})
	if !reason.OK() {
		b.exclude(depth, rec, reason)
		return nil
	}
	twin.Subtitles = b.rc.Filter.SubtitleFiles(subs)
	b.include(depth, rec)
	return &twin
}

func (b *builder) include(depth int, rec *rawstore.Record) {
	b.result.Included++
	b.logger.Debug("admitted",
		logging.Args(append(logging.DecisionAttrs("admission", "include", ""),
			logging.String(logging.FieldKind, string(rec.Kind)),
			logging.String(logging.FieldSlug, rec.Slug),
		)...)...,
	)
	if b.rc.Recorder != nil {
		b.rc.Recorder.Include(depth, rec.Kind, rec.Slug)
	}
}

func (b *builder) exclude(depth int, rec *rawstore.Record, reason admission.Reason) {
	b.result.Excluded[reason]++
	b.logger.Debug("excluded",
		logging.Args(append(logging.DecisionAttrs("admission", "exclude", reason.String()),
			logging.String(logging.FieldKind, string(rec.Kind)),
			logging.String(logging.FieldSlug, rec.Slug),
		)...)...,
	)
	if b.rc.Recorder != nil {
		b.rc.Recorder.Exclude(depth, rec.Kind, rec.Slug, reason)
	}
}

func (b *builder) excludedTotal() int {
	total := 0
	for _, n := range b.result.Excluded {
		total += n
	}
	return total
}
