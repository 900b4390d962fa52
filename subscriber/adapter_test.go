package subscriber

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danyill/oscd-subscriber-lb-siemens/edit"
	"github.com/danyill/oscd-subscriber-lb-siemens/message"
	"github.com/danyill/oscd-subscriber-lb-siemens/scl"
	"github.com/danyill/oscd-subscriber-lb-siemens/testutil"
)

const (
	eventsSubject      = "scl.edits"
	subscribeSubject   = "scl.requests.subscribe"
	unsubscribeSubject = "scl.requests.unsubscribe"
)

func newTestAdapter(t *testing.T, doc *scl.Document, enabled bool) (*Adapter, *testutil.Bus) {
	t.Helper()
	bus := testutil.NewBus()
	a, err := New(doc, bus, Config{
		Name:               "test",
		Enabled:            enabled,
		EventsSubject:      eventsSubject,
		SubscribeSubject:   subscribeSubject,
		UnsubscribeSubject: unsubscribeSubject,
	}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop(0) })
	return a, bus
}

// publishEvent encodes and delivers one edit event; testutil.Bus delivery is
// synchronous, so the cycle has completed when this returns.
func publishEvent(t *testing.T, bus *testutil.Bus, items []edit.Item) {
	t.Helper()
	data, err := message.NewEditEvent("test-host", items).Encode()
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), eventsSubject, data))
}

// setAttrs builds the Attrs map of an update record that sets every given
// attribute.
func setAttrs(attrs map[string]string) map[string]*string {
	out := make(map[string]*string, len(attrs))
	for k, v := range attrs {
		v := v
		out[k] = &v
	}
	return out
}

// clearAttrs builds the Attrs map of an update record that removes every
// given attribute.
func clearAttrs(names ...string) map[string]*string {
	out := make(map[string]*string, len(names))
	for _, n := range names {
		out[n] = nil
	}
	return out
}

var qualityPairBinding = map[string]string{
	"iedName": "GEN1",
	"ldInst":  "Prot",
	"prefix":  "",
	"lnClass": "PTOC",
	"lnInst":  "1",
	"doName":  "Str",
	"daName":  "general",
}

func TestSubscribeInfersQualityCompanion(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	_, bus := newTestAdapter(t, doc, true)

	refs := testutil.ExtRefs(doc)
	fcdas := testutil.FCDAs(doc)
	cb := doc.Root.DescendantsByTag("GSEControl")[0]

	publishEvent(t, bus, []edit.Item{
		{Record: &edit.Record{
			Kind:    edit.KindUpdate,
			Element: refs[0].Ordinal(),
			Attrs:   setAttrs(qualityPairBinding),
		}},
	})

	// The trigger's binding landed on the mirror.
	assert.True(t, scl.IsSubscribed(refs[0]))

	msgs := bus.Messages(subscribeSubject)
	require.Len(t, msgs, 1)
	req, err := message.DecodeSubscribeRequest(msgs[0])
	require.NoError(t, err)

	assert.Equal(t, refs[1].Ordinal(), req.Target, "quality companion reference")
	assert.Equal(t, fcdas[1].Ordinal(), req.Source, "quality companion descriptor")
	assert.Equal(t, cb.Ordinal(), req.Control)
	assert.Empty(t, bus.Messages(unsubscribeSubject))
}

func TestUnsubscribeReleasesStream(t *testing.T) {
	doc := testutil.MustParse(t, testutil.SVStreamSCL)
	_, bus := newTestAdapter(t, doc, true)

	refs := testutil.ExtRefs(doc)

	publishEvent(t, bus, []edit.Item{
		{Record: &edit.Record{
			Kind:    edit.KindUpdate,
			Element: refs[0].Ordinal(),
			Attrs: clearAttrs("iedName", "ldInst", "prefix", "lnClass", "lnInst",
				"doName", "daName", "srcLDInst", "srcLNClass", "srcCBName", "serviceType"),
			IgnoreSupervision: true,
		}},
	})

	msgs := bus.Messages(unsubscribeSubject)
	require.Len(t, msgs, 4, "the whole stream is released")

	targets := make(map[int]bool)
	for _, m := range msgs {
		req, err := message.DecodeUnsubscribeRequest(m)
		require.NoError(t, err)
		require.Len(t, req.Targets, 1)
		assert.True(t, req.IgnoreSupervision, "per-edit flag travels with the request")
		targets[req.Targets[0]] = true
	}
	for _, ref := range refs {
		assert.True(t, targets[ref.Ordinal()], "reference %d released", ref.Ordinal())
	}
	assert.Empty(t, bus.Messages(subscribeSubject))
}

func TestDisabledAdapterStillMirrors(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	a, bus := newTestAdapter(t, doc, false)

	refs := testutil.ExtRefs(doc)
	publishEvent(t, bus, []edit.Item{
		{Record: &edit.Record{
			Kind:    edit.KindUpdate,
			Element: refs[0].Ordinal(),
			Attrs:   setAttrs(qualityPairBinding),
		}},
	})

	assert.True(t, scl.IsSubscribed(refs[0]), "mirror stays aligned while disabled")
	assert.Empty(t, bus.Messages(subscribeSubject))
	assert.Empty(t, bus.Messages(unsubscribeSubject))
	assert.Equal(t, 0, a.SnapshotCount())
}

func TestVendorFilter(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	_, bus := newTestAdapter(t, doc, true)

	// Reclassify the subscriber IED so its references are out of scope.
	subscriberIED := scl.FindIED(doc, "SIP1")
	require.NotNil(t, subscriberIED)
	subscriberIED.SetAttr("manufacturer", "OTHER")

	refs := testutil.ExtRefs(doc)
	publishEvent(t, bus, []edit.Item{
		{Record: &edit.Record{
			Kind:    edit.KindUpdate,
			Element: refs[0].Ordinal(),
			Attrs:   setAttrs(qualityPairBinding),
		}},
	})

	assert.True(t, scl.IsSubscribed(refs[0]), "the edit itself still applies")
	assert.Empty(t, bus.Messages(subscribeSubject))
}

func TestNonReferenceUpdateIsIgnored(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	a, bus := newTestAdapter(t, doc, true)

	fcda := testutil.FCDAs(doc)[0]
	publishEvent(t, bus, []edit.Item{
		{Record: &edit.Record{
			Kind:    edit.KindUpdate,
			Element: fcda.Ordinal(),
			Attrs:   setAttrs(map[string]string{"daName": "op"}),
		}},
	})

	assert.Equal(t, "op", fcda.Attr("daName"))
	assert.Empty(t, bus.Messages(subscribeSubject))
	assert.Equal(t, 0, a.SnapshotCount())
}

func TestInsertAndRemoveRecordsPassThrough(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	a, bus := newTestAdapter(t, doc, true)

	refs := testutil.ExtRefs(doc)
	publishEvent(t, bus, []edit.Item{
		{Record: &edit.Record{Kind: edit.KindInsert, Element: refs[0].Ordinal()}},
		{Record: &edit.Record{Kind: edit.KindRemove, Element: refs[1].Ordinal()}},
	})

	assert.Empty(t, bus.Messages(subscribeSubject))
	assert.Empty(t, bus.Messages(unsubscribeSubject))
	assert.Equal(t, 0, a.SnapshotCount())
}

func TestNestedBatchSubscribe(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	_, bus := newTestAdapter(t, doc, true)

	refs := testutil.ExtRefs(doc)
	publishEvent(t, bus, []edit.Item{
		{Batch: []edit.Item{
			{Record: &edit.Record{
				Kind:    edit.KindUpdate,
				Element: refs[0].Ordinal(),
				Attrs:   setAttrs(qualityPairBinding),
			}},
		}},
	})

	assert.Len(t, bus.Messages(subscribeSubject), 1)
}

func TestMalformedEventIsDropped(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	a, bus := newTestAdapter(t, doc, true)

	require.NoError(t, bus.Publish(context.Background(), eventsSubject, []byte("garbage")))

	assert.Empty(t, bus.Messages(subscribeSubject))
	assert.Equal(t, 0, a.SnapshotCount())
	assert.Equal(t, int64(1), a.Health().ErrorCount)
}

func TestSnapshotStoreEmptyAfterEveryCycle(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	a, bus := newTestAdapter(t, doc, true)
	refs := testutil.ExtRefs(doc)

	cycles := [][]edit.Item{
		// Inference fires.
		{{Record: &edit.Record{Kind: edit.KindUpdate, Element: refs[0].Ordinal(), Attrs: setAttrs(qualityPairBinding)}}},
		// No transition: desc-only update.
		{{Record: &edit.Record{Kind: edit.KindUpdate, Element: refs[1].Ordinal(), Attrs: setAttrs(map[string]string{"desc": "x"})}}},
		// Out-of-range ordinal.
		{{Record: &edit.Record{Kind: edit.KindUpdate, Element: 9999}}},
		// Empty batch.
		nil,
	}

	for i, items := range cycles {
		publishEvent(t, bus, items)
		assert.Equal(t, 0, a.SnapshotCount(), "cycle %d leaked snapshots", i)
	}
}

func TestAdapterLifecycle(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	bus := testutil.NewBus()

	a, err := New(doc, bus, Config{
		Name:          "test",
		Enabled:       true,
		EventsSubject: eventsSubject,
	}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	assert.Error(t, a.Start(context.Background()), "double start rejected")
	assert.True(t, a.Health().Healthy)

	require.NoError(t, a.Stop(0))
	assert.False(t, a.Health().Healthy)
}

func TestNewValidation(t *testing.T) {
	doc := testutil.MustParse(t, testutil.QualityPairSCL)
	bus := testutil.NewBus()

	_, err := New(nil, bus, Config{}, nil, nil)
	assert.Error(t, err)

	_, err = New(doc, nil, Config{}, nil, nil)
	assert.Error(t, err)
}
