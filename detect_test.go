package lambdaapi

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type EventViewSuite struct {
	suite.Suite
	view eventView
}

func (s *EventViewSuite) SetupTest() {
	raw := []byte(`{
		"version": "2.0",
		"httpMethod": "GET",
		"requestContext": {"http": {"method": "GET"}},
		"count": 3
	}`)
	view, err := inspect(raw)
	s.Require().NoError(err)
	s.view = view
}

func TestEventViewSuite(t *testing.T) {
	suite.Run(t, new(EventViewSuite))
}

func (s *EventViewSuite) TestRejectsInvalidJSON() {
	_, err := inspect([]byte(`{not json}`))
	s.Assert().ErrorIs(err, errInvalidEvent)
}

func (s *EventViewSuite) TestRejectsEmptyInput() {
	_, err := inspect(nil)
	s.Assert().ErrorIs(err, errInvalidEvent)
}

func (s *EventViewSuite) TestHasTopLevelField() {
	s.Assert().True(s.view.has("httpMethod"))
	s.Assert().False(s.view.has("missing"))
}

func (s *EventViewSuite) TestHasNestedField() {
	s.Assert().True(s.view.has("requestContext.http.method"))
	s.Assert().False(s.view.has("requestContext.http.path"))
}

func (s *EventViewSuite) TestStrRequiresStringValue() {
	v, ok := s.view.str("version")
	s.Assert().True(ok)
	s.Assert().Equal("2.0", v)

	_, ok = s.view.str("count")
	s.Assert().False(ok)

	_, ok = s.view.str("missing")
	s.Assert().False(ok)
}

type DetectFormatSuite struct {
	suite.Suite
}

func TestDetectFormatSuite(t *testing.T) {
	suite.Run(t, new(DetectFormatSuite))
}

func (s *DetectFormatSuite) TestGatewayV2() {
	raw := []byte(`{
		"version": "2.0",
		"rawPath": "/users",
		"requestContext": {"http": {"method": "GET", "path": "/users"}}
	}`)
	format, err := detectFormat(raw)
	s.Require().NoError(err)
	s.Assert().Equal(FormatAPIGatewayV2, format)
}

func (s *DetectFormatSuite) TestALBBeforeV1() {
	// ALB events also carry httpMethod and path; the elb marker must win.
	raw := []byte(`{
		"httpMethod": "GET",
		"path": "/users",
		"requestContext": {"elb": {"targetGroupArn": "arn:aws:elasticloadbalancing:..."}}
	}`)
	format, err := detectFormat(raw)
	s.Require().NoError(err)
	s.Assert().Equal(FormatALB, format)
}

func (s *DetectFormatSuite) TestGatewayV1() {
	raw := []byte(`{
		"httpMethod": "POST",
		"path": "/users",
		"requestContext": {"requestId": "abc"}
	}`)
	format, err := detectFormat(raw)
	s.Require().NoError(err)
	s.Assert().Equal(FormatAPIGatewayV1, format)
}

func (s *DetectFormatSuite) TestUnrecognizedShape() {
	format, err := detectFormat([]byte(`{"Records": []}`))
	s.Assert().Equal(FormatUnknown, format)

	var ferr *FormatError
	s.Require().ErrorAs(err, &ferr)
	s.Assert().Equal(FormatUnknown, ferr.Format)
}

func (s *DetectFormatSuite) TestMalformedPayload() {
	_, err := detectFormat([]byte(`not json at all`))
	s.Assert().ErrorIs(err, errInvalidEvent)
}

func (s *DetectFormatSuite) TestVersionMustBeTwo() {
	// A 1.0 version string with v2-looking fields must not detect as v2.
	raw := []byte(`{
		"version": "1.0",
		"rawPath": "/users",
		"httpMethod": "GET",
		"path": "/users",
		"requestContext": {"http": {"method": "GET"}}
	}`)
	format, err := detectFormat(raw)
	s.Require().NoError(err)
	s.Assert().Equal(FormatAPIGatewayV1, format)
}
