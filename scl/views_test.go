package scl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewsSCL = `<SCL>
  <IED name="PUB">
    <AccessPoint name="AP1">
      <Server>
        <LDevice inst="LD1">
          <LN0 lnClass="LLN0" inst="">
            <DataSet name="DS1">
              <FCDA ldInst="LD1" prefix="" lnClass="PTOC" lnInst="1" doName="Str" daName="general" fc="ST"/>
              <FCDA ldInst="LD1" prefix="" lnClass="PTOC" lnInst="1" doName="Str" daName="q" fc="ST"/>
            </DataSet>
            <ReportControl name="RCB1" datSet="Other"/>
            <GSEControl name="GCB1" datSet="DS1"/>
            <GSEControl name="GCB2" datSet="DS1"/>
          </LN0>
        </LDevice>
      </Server>
    </AccessPoint>
  </IED>
  <IED name="SUB" manufacturer="SIEMENS">
    <AccessPoint name="AP1">
      <Server>
        <LDevice inst="CTRL">
          <LN lnClass="PTRC" inst="1">
            <Inputs>
              <ExtRef intAddr="Str;PTOC/Str/general" iedName="PUB" ldInst="LD1" prefix="" lnClass="PTOC" lnInst="1" doName="Str" daName="general"/>
            </Inputs>
          </LN>
        </LDevice>
      </Server>
    </AccessPoint>
  </IED>
</SCL>`

func TestIsSubscribedRequiresEveryIdentityAttr(t *testing.T) {
	full := map[string]string{
		"iedName": "PUB",
		"ldInst":  "LD1",
		"lnClass": "PTOC",
		"lnInst":  "1",
		"doName":  "Str",
	}

	n := &Node{Tag: "ExtRef"}
	for k, v := range full {
		n.SetAttr(k, v)
	}
	require.True(t, IsSubscribed(n))

	// Removing any single identity attribute flips the state.
	for attr := range full {
		t.Run("missing "+attr, func(t *testing.T) {
			m := &Node{Tag: "ExtRef"}
			for k, v := range full {
				if k != attr {
					m.SetAttr(k, v)
				}
			}
			assert.False(t, IsSubscribed(m))
		})
	}
}

func TestIsSubscribedAcceptsEmptyValues(t *testing.T) {
	// Presence is what counts: lnInst="" on an LN0 source is still a binding.
	n := &Node{Tag: "ExtRef"}
	for _, a := range []string{"iedName", "ldInst", "lnClass", "lnInst", "doName"} {
		n.SetAttr(a, "")
	}
	assert.True(t, IsSubscribed(n))
	assert.False(t, IsSubscribed(nil))
}

func TestFindIED(t *testing.T) {
	doc, err := ParseString(viewsSCL)
	require.NoError(t, err)

	pub := FindIED(doc, "PUB")
	require.NotNil(t, pub)
	assert.Equal(t, "PUB", pub.Attr("name"))

	assert.Nil(t, FindIED(doc, "MISSING"))
	assert.Nil(t, FindIED(doc, ""))
}

func TestFindFCDAs(t *testing.T) {
	doc, err := ParseString(viewsSCL)
	require.NoError(t, err)

	ref := doc.Root.DescendantsByTag("ExtRef")[0]
	fcdas := FindFCDAs(doc, ref)
	require.Len(t, fcdas, 1)
	assert.Equal(t, "general", fcdas[0].DAName())
	assert.Equal(t, "DS1", fcdas[0].DataSet().Attr("name"))
}

func TestFindFCDAsUnboundReference(t *testing.T) {
	doc, err := ParseString(viewsSCL)
	require.NoError(t, err)

	unbound := &Node{Tag: "ExtRef"}
	unbound.SetAttr("intAddr", "Str;PTOC/Str/general")
	assert.Nil(t, FindFCDAs(doc, unbound))
}

func TestExtRefEnclosingLNClass(t *testing.T) {
	doc, err := ParseString(viewsSCL)
	require.NoError(t, err)

	ref := ExtRef{El: doc.Root.DescendantsByTag("ExtRef")[0]}
	assert.Equal(t, "PTRC", ref.EnclosingLNClass())
	assert.True(t, ref.Subscribed())
}

func TestControlBlockForDatasetMatch(t *testing.T) {
	doc, err := ParseString(viewsSCL)
	require.NoError(t, err)

	ref := ExtRef{El: doc.Root.DescendantsByTag("ExtRef")[0]}
	fcda := FCDA{El: doc.Root.DescendantsByTag("FCDA")[0]}

	cb := ControlBlockFor(doc, ref, fcda)
	require.NotNil(t, cb)
	// RCB1 names a different DataSet; GCB1 is the first matching block in
	// document order and wins over GCB2.
	assert.Equal(t, "GCB1", cb.Attr("name"))
}

func TestControlBlockForExplicitAttrsWin(t *testing.T) {
	doc, err := ParseString(viewsSCL)
	require.NoError(t, err)

	refEl := doc.Root.DescendantsByTag("ExtRef")[0]
	refEl.SetAttr("srcCBName", "GCB2")
	refEl.SetAttr("srcLDInst", "LD1")
	refEl.SetAttr("srcLNClass", "LLN0")

	ref := ExtRef{El: refEl}
	fcda := FCDA{El: doc.Root.DescendantsByTag("FCDA")[0]}

	cb := ControlBlockFor(doc, ref, fcda)
	require.NotNil(t, cb)
	assert.Equal(t, "GCB2", cb.Attr("name"))
}

func TestControlBlockForExplicitDefaults(t *testing.T) {
	doc, err := ParseString(viewsSCL)
	require.NoError(t, err)

	// srcLDInst falls back to ldInst, srcLNClass to LLN0.
	refEl := doc.Root.DescendantsByTag("ExtRef")[0]
	refEl.SetAttr("srcCBName", "GCB1")

	ref := ExtRef{El: refEl}
	cb := ControlBlockFor(doc, ref, FCDA{El: doc.Root.DescendantsByTag("FCDA")[0]})
	require.NotNil(t, cb)
	assert.Equal(t, "GCB1", cb.Attr("name"))
}

func TestControlBlockForNothingResolves(t *testing.T) {
	doc, err := ParseString(viewsSCL)
	require.NoError(t, err)

	// A descriptor outside any DataSet has no implied control block.
	orphan := FCDA{El: &Node{Tag: "FCDA"}}
	ref := ExtRef{El: &Node{Tag: "ExtRef"}}
	assert.Nil(t, ControlBlockFor(doc, ref, orphan))
}
