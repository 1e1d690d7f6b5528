package rsacrack

import (
	"math/big"
	"testing"
)

func mustInt(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad integer literal %q", s)
	}
	return n
}

func mustKey(t *testing.T, n, e string) *PublicKey {
	t.Helper()
	key, err := NewPublicKey(mustInt(t, n), mustInt(t, e))
	if err != nil {
		t.Fatalf("building key: %v", err)
	}
	return key
}

// checkFactors verifies a recovered key against the known factorization.
func checkFactors(t *testing.T, priv *PrivateKey, p, q *big.Int) {
	t.Helper()
	if priv == nil {
		t.Fatal("no private key recovered")
	}
	if priv.P == nil || priv.Q == nil {
		t.Fatal("recovered key is missing factors")
	}
	got := []*big.Int{priv.P, priv.Q}
	if got[0].Cmp(got[1]) > 0 {
		got[0], got[1] = got[1], got[0]
	}
	want := []*big.Int{p, q}
	if want[0].Cmp(want[1]) > 0 {
		want[0], want[1] = want[1], want[0]
	}
	if got[0].Cmp(want[0]) != 0 || got[1].Cmp(want[1]) != 0 {
		t.Fatalf("wrong factors:\n got %s, %s\nwant %s, %s", got[0], got[1], want[0], want[1])
	}
}

// 512-bit key with a 130-bit private exponent, above the continued-fraction
// range but below n^0.26.
const (
	bdP = "103741444643723203848045624288608150214089396314961036468731673558866687380083"
	bdQ = "63738451939031325961840482847016348013045118738110702785965932149633377821763"
	bdN = "6612319083509630207023941719524985920317636931393553780870292112082925292687440204120547426037734610580308366908621292143818191834750316596067451810146329"
	bdE = "4952620508362617948868479774916781313579071929390946350945581036717426009089191997407467096266993946410663282762379668177404077712533239144461624103961277"
	bdD = "760923885878474559147728897766197983573"
)

// 512-bit key with an 80-bit private exponent, inside the Wiener range.
const (
	wienerP = "88065892298713157685062754232192126445072267695118870830616207565232404019963"
	wienerQ = "74441553408445604394915005022183240531070701355763043770003756007748740124193"
	wienerN = "6555761825017073966135342740353757949422885003962498681071405902996615380449880362187752088079690536927859068669724621134962692965746585502556049071264859"
	wienerE = "827730746643399289544012907280104375353412795892176334328544095101327232927356369468504031326631156333547021552521493331843153893939456256452471650485889"
	wienerD = "1045943363257689899036609"
)

// Modulus built from adjacent 128-bit primes.
const (
	fermatP = "298136773383661165485578021910917936341"
	fermatQ = "298136773383661165485578021910917936449"
	fermatN = "88885535643620532753774308886240818454511725426323099875947435436125265593109"
)

// Two moduli sharing a 128-bit prime.
const (
	sharedPrime = "193750750928282912768927822799727540477"
	sharedQ1    = "305014893880751417485473273942255443201"
	sharedQ2    = "207234704970113821202131018078659425747"
	sharedN1    = "59096864733706111830902905776026423307690923422391666266346437535201301946877"
	sharedN2    = "40151879706360715999745447769178841336911056549263526742569757707981518461319"
)

// Broadcast of the message "hi" under e = 3 to three recipients.
var hastadModuli = []string{
	"168657258570823004115748684539466816063",
	"267483819538436921545859004264763130329",
	"237756715794903592977020345250279590377",
}

const hastadCipher = "19096251818489"
