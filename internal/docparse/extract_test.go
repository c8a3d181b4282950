package docparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<DOCUMENT>
<COVER AUNIT="PYM_DT" AUNITVALUE="2024년 02월 05일"></COVER>
<COVER AUNIT="LST_PLN_DT" AUNITVALUE="2024년 02월 20일"></COVER>
<TABLE>
<TR><TD>회 사 명</TD><TD>가나전자 주식회사</TD></TR>
<TR><TD>대표이사</TD><TD></TD><TD>홍 길 동</TD></TR>
<TR><TD>본 점 소 재 지</TD><TD>서울특별시 영등포구 여의대로 1</TD></TR>
<TR><TD>작 성 책 임 자</TD><TD>(직 책) 경영지원본부장</TD><TD>(성 명) 김 철 수</TD></TR>
<TR><TD>(전  화) 02-123-4567</TD></TR>
</TABLE>
</DOCUMENT>`

func TestExtract(t *testing.T) {
	f := NewExtractor().Extract(sampleDocument)

	require.NotNil(t, f.PaymentDate)
	assert.Equal(t, "2024년 02월 05일", *f.PaymentDate)
	require.NotNil(t, f.ListingDate)
	assert.Equal(t, "2024년 02월 20일", *f.ListingDate)

	// The label's value is the next non-empty cell.
	require.NotNil(t, f.Representative)
	assert.Equal(t, "홍 길 동", *f.Representative)
	require.NotNil(t, f.HeadOffice)
	assert.Equal(t, "서울특별시 영등포구 여의대로 1", *f.HeadOffice)

	// Signatory sub-fields share a cell with their label echo.
	require.NotNil(t, f.WriterTitle)
	assert.Equal(t, "경영지원본부장", *f.WriterTitle)
	require.NotNil(t, f.WriterName)
	assert.Equal(t, "김 철 수", *f.WriterName)
	require.NotNil(t, f.WriterPhone)
	assert.Equal(t, "02-123-4567", *f.WriterPhone)
}

func TestExtractWithoutSignatoryBlock(t *testing.T) {
	markup := `<TABLE>
<TR><TD>대표이사</TD><TD>홍길동</TD></TR>
</TABLE>`

	f := NewExtractor().Extract(markup)

	require.NotNil(t, f.Representative)
	assert.Equal(t, "홍길동", *f.Representative)
	assert.Nil(t, f.HeadOffice)
	assert.Nil(t, f.WriterTitle)
	assert.Nil(t, f.WriterName)
	assert.Nil(t, f.WriterPhone)
	assert.Nil(t, f.PaymentDate)
	assert.Nil(t, f.ListingDate)
}

func TestExtractEmptyDocument(t *testing.T) {
	f := NewExtractor().Extract("")

	assert.Nil(t, f.Representative)
	assert.Nil(t, f.PaymentDate)
}

func TestExtractScheduleLabelFallback(t *testing.T) {
	markup := `<TABLE>
<TR><TD>납입일</TD><TE CLASS="NORMAL">2024.02.05</TE></TR>
<TR><TD>신주의 상장 예정일</TD><TU>2024.02.20</TU></TR>
</TABLE>`

	f := NewExtractor().Extract(markup)

	require.NotNil(t, f.PaymentDate)
	assert.Equal(t, "2024.02.05", *f.PaymentDate)
	require.NotNil(t, f.ListingDate)
	assert.Equal(t, "2024.02.20", *f.ListingDate)
}

func TestExtractDashBecomesNull(t *testing.T) {
	markup := `<DOCUMENT>
<COVER AUNIT="PYM_DT" AUNITVALUE="-"></COVER>
<TABLE>
<TR><TD>본점소재지</TD><TD>-</TD></TR>
</TABLE>
</DOCUMENT>`

	f := NewExtractor().Extract(markup)

	assert.Nil(t, f.PaymentDate)
	assert.Nil(t, f.HeadOffice)
}

func TestExtractSignatoryWindowBound(t *testing.T) {
	// The phone sub-label sits beyond the scan window and must not be
	// picked up.
	markup := `<TABLE>
<TR><TD>작성책임자</TD><TD>(직책) 이사</TD></TR>
<TR><TD>1</TD><TD>2</TD><TD>3</TD><TD>4</TD><TD>5</TD><TD>6</TD><TD>7</TD><TD>8</TD><TD>9</TD><TD>10</TD><TD>11</TD></TR>
<TR><TD>(전화) 02-000-0000</TD></TR>
</TABLE>`

	e := NewExtractor()
	f := e.Extract(markup)

	require.NotNil(t, f.WriterTitle)
	assert.Equal(t, "이사", *f.WriterTitle)
	assert.Nil(t, f.WriterPhone)

	// A wider window reaches it.
	e.ScanWindow = 20
	f = e.Extract(markup)
	require.NotNil(t, f.WriterPhone)
	assert.Equal(t, "02-000-0000", *f.WriterPhone)
}

func TestCleanCellText(t *testing.T) {
	assert.Equal(t, "홍 길 동", cleanCellText("  홍 길\n동 "))
	assert.Equal(t, "", cleanCellText("   "))
}
