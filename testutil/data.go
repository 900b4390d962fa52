package testutil

import (
	"testing"

	"github.com/danyill/oscd-subscriber-lb-siemens/scl"
)

// QualityPairSCL is a minimal document with one GOOSE value/quality pair:
// a publishing IED with a two-entry DataSet and a Siemens subscriber whose
// two references are not yet bound.
const QualityPairSCL = `<SCL xmlns="http://www.iec.ch/61850/2003/SCL">
  <IED name="GEN1" manufacturer="Dummy">
    <AccessPoint name="AP1">
      <Server>
        <LDevice inst="Prot">
          <LN0 lnClass="LLN0" inst="">
            <DataSet name="GooseDS">
              <FCDA ldInst="Prot" prefix="" lnClass="PTOC" lnInst="1" doName="Str" daName="general" fc="ST"/>
              <FCDA ldInst="Prot" prefix="" lnClass="PTOC" lnInst="1" doName="Str" daName="q" fc="ST"/>
            </DataSet>
            <GSEControl name="GCB1" datSet="GooseDS"/>
          </LN0>
          <LN lnClass="PTOC" inst="1"/>
        </LDevice>
      </Server>
    </AccessPoint>
  </IED>
  <IED name="SIP1" manufacturer="SIEMENS">
    <AccessPoint name="AP1">
      <Server>
        <LDevice inst="CtrlLD">
          <LN0 lnClass="LLN0" inst="">
            <Inputs>
              <ExtRef intAddr="Str;PTOC/Str/general" desc="start signal"/>
              <ExtRef intAddr="Str;PTOC/Str/q" desc="start quality"/>
            </Inputs>
          </LN0>
        </LDevice>
      </Server>
    </AccessPoint>
  </IED>
</SCL>`

// SVStreamSCL is a document with a two-phase sampled-value stream (four
// descriptors, two value/quality pairs) and a Siemens subscriber whose four
// references are already bound to it.
const SVStreamSCL = `<SCL xmlns="http://www.iec.ch/61850/2003/SCL">
  <IED name="MU01" manufacturer="Dummy">
    <AccessPoint name="AP1">
      <Server>
        <LDevice inst="MUSV">
          <LN0 lnClass="LLN0" inst="">
            <DataSet name="PhsMeas1">
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="1" doName="AmpSv" daName="instMag.i" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="1" doName="AmpSv" daName="q" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="2" doName="AmpSv" daName="instMag.i" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="2" doName="AmpSv" daName="q" fc="MX"/>
            </DataSet>
            <SampledValueControl name="MSVCB01" datSet="PhsMeas1"/>
          </LN0>
        </LDevice>
      </Server>
    </AccessPoint>
  </IED>
  <IED name="SIP2" manufacturer="SIEMENS">
    <AccessPoint name="AP1">
      <Server>
        <LDevice inst="SVLD">
          <LN lnClass="TCTR" inst="1">
            <Inputs>
              <ExtRef intAddr="AmpSv;TCTR/AmpSv/instMag.i" iedName="MU01" ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="1" doName="AmpSv" daName="instMag.i" srcLDInst="MUSV" srcLNClass="LLN0" srcCBName="MSVCB01" serviceType="SMV"/>
              <ExtRef intAddr="AmpSv;TCTR/AmpSv/q" iedName="MU01" ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="1" doName="AmpSv" daName="q" srcLDInst="MUSV" srcLNClass="LLN0" srcCBName="MSVCB01" serviceType="SMV"/>
              <ExtRef intAddr="AmpSv;TCTR/AmpSv/instMag.i" iedName="MU01" ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="2" doName="AmpSv" daName="instMag.i" srcLDInst="MUSV" srcLNClass="LLN0" srcCBName="MSVCB01" serviceType="SMV"/>
              <ExtRef intAddr="AmpSv;TCTR/AmpSv/q" iedName="MU01" ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="2" doName="AmpSv" daName="q" srcLDInst="MUSV" srcLNClass="LLN0" srcCBName="MSVCB01" serviceType="SMV"/>
            </Inputs>
          </LN>
        </LDevice>
      </Server>
    </AccessPoint>
  </IED>
</SCL>`

// WideStreamSCL carries a full-width stream: four value/quality pairs over
// ascending TCTR instances, the widest run the classifier accepts.
const WideStreamSCL = `<SCL xmlns="http://www.iec.ch/61850/2003/SCL">
  <IED name="MU02" manufacturer="Dummy">
    <AccessPoint name="AP1">
      <Server>
        <LDevice inst="MUSV">
          <LN0 lnClass="LLN0" inst="">
            <DataSet name="PhsMeas1">
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="1" doName="AmpSv" daName="instMag.i" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="1" doName="AmpSv" daName="q" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="2" doName="AmpSv" daName="instMag.i" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="2" doName="AmpSv" daName="q" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="3" doName="AmpSv" daName="instMag.i" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="3" doName="AmpSv" daName="q" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="4" doName="AmpSv" daName="instMag.i" fc="MX"/>
              <FCDA ldInst="MUSV" prefix="I" lnClass="TCTR" lnInst="4" doName="AmpSv" daName="q" fc="MX"/>
            </DataSet>
            <SampledValueControl name="MSVCB01" datSet="PhsMeas1"/>
          </LN0>
        </LDevice>
      </Server>
    </AccessPoint>
  </IED>
</SCL>`

// MustParse parses an SCL fixture and fails the test on error.
func MustParse(t *testing.T, xml string) *scl.Document {
	t.Helper()
	doc, err := scl.ParseString(xml)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

// ExtRefs returns the document's ExtRef elements in document order.
func ExtRefs(doc *scl.Document) []*scl.Node {
	return doc.Root.DescendantsByTag("ExtRef")
}

// FCDAs returns the document's FCDA elements in document order.
func FCDAs(doc *scl.Document) []*scl.Node {
	return doc.Root.DescendantsByTag("FCDA")
}

// SubscribeExtRef sets the binding attributes that mark a reference
// subscribed to the given descriptor attributes.
func SubscribeExtRef(ref *scl.Node, attrs map[string]string) {
	for k, v := range attrs {
		ref.SetAttr(k, v)
	}
}

// UnsubscribeExtRef removes the binding attributes from a reference,
// leaving intAddr and descriptive attributes in place.
func UnsubscribeExtRef(ref *scl.Node) {
	for _, a := range []string{
		"iedName", "ldInst", "prefix", "lnClass", "lnInst",
		"doName", "daName", "srcLDInst", "srcPrefix", "srcLNClass",
		"srcLNInst", "srcCBName", "serviceType",
	} {
		ref.RemoveAttr(a)
	}
}
