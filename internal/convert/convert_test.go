package convert

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miriam/othersupport-converter/internal/docx"
	"github.com/miriam/othersupport-converter/internal/docx/docxtest"
	"github.com/miriam/othersupport-converter/internal/extract"
	"github.com/miriam/othersupport-converter/internal/types"
)

// sampleDoc mimics the NIH form layout end to end.
func sampleDoc() []byte {
	return docxtest.New().
		Paragraph("Name of Individual: Smith, Jane Q. Commons ID: JSMITH").
		Paragraph("ACTIVE").
		Paragraph("Title: Mapping Cortical Circuits").
		Paragraph("Major Goals: Chart the wiring of the visual cortex.").
		Paragraph("Project Number: R01 CA123456").
		Paragraph("Source of Support: NIH").
		Paragraph("Primary Place of Performance: Sample University").
		Paragraph("Project/Proposal Start and End Date: 9/2021 - 8/2026").
		Paragraph("Total Award Amount (including Indirect Costs): $1,250,000").
		Table([][]string{
			{"Year", "Person Months"},
			{"2025", "3.5 calendar"},
		}).
		Paragraph("Overlap: None.").
		Bytes()
}

var fixedNow = func() time.Time {
	return time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)
}

func TestParseBytes_SampleDocument(t *testing.T) {
	profile, err := ParseBytes(sampleDoc())
	require.NoError(t, err)

	assert.Equal(t, "Jane", profile.Identification.Name.FirstName)
	assert.Equal(t, "Smith", profile.Identification.Name.LastName)
	require.Len(t, profile.Funding, 1)

	sup := profile.Funding[0]
	assert.Equal(t, "Mapping Cortical Circuits", sup.ProjectTitle)
	assert.Equal(t, "R01CA123456", sup.AwardNumber)
	assert.Equal(t, types.StatusActive, sup.Status)
	assert.Equal(t, float64(1250000), sup.AwardAmount)
	assert.Equal(t, "2021-09-01", sup.StartDate)
	assert.Equal(t, "2026-08-01", sup.EndDate)
	require.Len(t, sup.Commitment, 1)
	assert.Equal(t, types.PersonMonth{Year: 2025, Effort: 3.5}, sup.Commitment[0])
}

func TestParse_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.docx")
	require.NoError(t, os.WriteFile(path, sampleDoc(), 0o644))

	profile, err := Parse(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "Smith", profile.Identification.Name.LastName)
}

func TestParse_FromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		_, _ = w.Write(sampleDoc())
	}))
	defer server.Close()

	profile, err := Parse(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "Smith", profile.Identification.Name.LastName)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(context.Background(), filepath.Join(t.TempDir(), "gone.docx"), nil)

	var perr *docx.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseBytes_CorruptDocument(t *testing.T) {
	_, err := ParseBytes([]byte("this is not a zip archive"))

	var perr *docx.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseBytes_EntryWithoutTitleOrNumber(t *testing.T) {
	doc := docxtest.New().
		Paragraph("ACTIVE").
		Paragraph("Title:").
		Paragraph("Source of Support: NSF").
		Bytes()

	_, err := ParseBytes(doc)

	var verr *extract.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Current Support", verr.Section)
}

func TestConvert_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.docx")
	require.NoError(t, os.WriteFile(path, sampleDoc(), 0o644))

	res, err := Convert(context.Background(), path, &Options{Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, "Smith_Jane_2025-07-04_12-00-00.xml", res.Filename)
	assert.True(t, strings.HasPrefix(res.XML, `<?xml version="1.0" encoding="UTF-8"?>`+"\n<profile>\n"))
	assert.Contains(t, res.XML, "    <support>\n")
	assert.Contains(t, res.XML, "<projecttitle>Mapping Cortical Circuits</projecttitle>")
	assert.NotNil(t, res.Profile)
}

func TestConvertBytes_Compact(t *testing.T) {
	res, err := ConvertBytes(sampleDoc(), &Options{Compact: true, Now: fixedNow})
	require.NoError(t, err)

	body := strings.TrimPrefix(res.XML, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	assert.NotContains(t, body, "\n")
	assert.True(t, strings.HasPrefix(body, "<profile>"))
}

func TestConvertReader(t *testing.T) {
	res, err := ConvertReader(bytes.NewReader(sampleDoc()), &Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, "Smith_Jane_2025-07-04_12-00-00.xml", res.Filename)
}

func TestConvertReader_NamelessDocument(t *testing.T) {
	doc := docxtest.New().
		Paragraph("ACTIVE").
		Paragraph("Title: Anonymous Entry").
		Bytes()

	res, err := ConvertReader(bytes.NewReader(doc), &Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, "no_name_found_2025-07-04_12-00-00.xml", res.Filename)
}

func TestFilename(t *testing.T) {
	at := fixedNow()
	tests := []struct {
		name types.Name
		want string
	}{
		{types.Name{FirstName: "Jane", LastName: "Smith"}, "Smith_Jane_2025-07-04_12-00-00.xml"},
		{types.Name{FirstName: "Jane"}, "Jane_2025-07-04_12-00-00.xml"},
		{types.Name{LastName: "Smith"}, "no_name_found_2025-07-04_12-00-00.xml"},
		{types.Name{}, "no_name_found_2025-07-04_12-00-00.xml"},
	}
	for _, tt := range tests {
		p := &types.Profile{Identification: types.Identification{Name: tt.name}}
		assert.Equal(t, tt.want, Filename(p, at))
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://grants.nih.gov/sample.docx"))
	assert.True(t, IsURL("http://localhost:8080/doc"))
	assert.False(t, IsURL("./local/sample.docx"))
	assert.False(t, IsURL("C:\\docs\\sample.docx"))
	assert.False(t, IsURL("httpdocs/sample.docx"))
}
