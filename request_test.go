package funcrest

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RequestSuite struct {
	suite.Suite
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestSuite))
}

func (s *RequestSuite) TestDefaultsToFreshEmptyMaps() {
	a := NewRequest("get", "/a")
	b := NewRequest("get", "/b")

	a.Headers["x"] = "1"
	a.Query["q"] = "1"
	a.PathParams["p"] = "1"

	s.Assert().Empty(b.Headers)
	s.Assert().Empty(b.Query)
	s.Assert().Empty(b.PathParams)
	s.Assert().NotNil(b.Body())
	s.Assert().Empty(b.Body())
	s.Assert().Nil(b.ProxyRoute)
	s.Assert().Nil(b.JSON)
}

func (s *RequestSuite) TestUpperCasesMethod() {
	r := NewRequest("post", "/")
	s.Assert().Equal("POST", r.Method())

	r.SetMethod("Patch")
	s.Assert().Equal("PATCH", r.Method())
}

func (s *RequestSuite) TestSetBodyAcceptsTextAndBytes() {
	r := NewRequest("POST", "/")

	s.Require().NoError(r.SetBody("héllo"))
	s.Assert().Equal([]byte("héllo"), r.Body())

	s.Require().NoError(r.SetBody([]byte{1, 2}))
	s.Assert().Equal([]byte{1, 2}, r.Body())
}

func (s *RequestSuite) TestSetBodyRejectsOtherTypes() {
	r := NewRequest("POST", "/", WithBody("keep"))

	err := r.SetBody(map[string]any{"a": 1})

	s.Assert().ErrorIs(err, ErrBodyType)
	var terr *BodyTypeError
	s.Require().ErrorAs(err, &terr)
	s.Assert().Equal("map[string]interface {}", terr.Type)
	s.Assert().Contains(err.Error(), "map[string]interface {}")
	s.Assert().Equal("keep", string(r.Body()))
}

func (s *RequestSuite) TestGetJSON() {
	r := NewRequest("POST", "/", WithBody(`{"a": [1, "b"]}`))

	v, err := r.GetJSON()

	s.Require().NoError(err)
	s.Assert().Equal(map[string]any{"a": []any{1.0, "b"}}, v)
}

func (s *RequestSuite) TestGetJSONFailsOnInvalidBody() {
	r := NewRequest("POST", "/", WithBody("not json"))

	_, err := r.GetJSON()

	s.Assert().Error(err)
}

func (s *RequestSuite) TestDecodeJSONIntoStruct() {
	r := NewRequest("POST", "/", WithBody(`{"sku": "A-1"}`))

	var out struct {
		SKU string `json:"sku"`
	}
	s.Require().NoError(r.DecodeJSON(&out))
	s.Assert().Equal("A-1", out.SKU)
}

func (s *RequestSuite) TestOptionsIgnoreNilMaps() {
	r := NewRequest("GET", "/", WithRequestHeaders(nil), WithQuery(nil), WithPathParams(nil))

	s.Assert().NotNil(r.Headers)
	s.Assert().NotNil(r.Query)
	s.Assert().NotNil(r.PathParams)
}

func (s *RequestSuite) TestBindingsAccessors() {
	b := Bindings{"route": "items/{id}", "methods": []any{"get", 3, "post"}}

	s.Assert().Equal("items/{id}", b.Route())
	s.Assert().Equal([]string{"get", "post"}, b.Methods())
	s.Assert().Equal([]string{"put"}, Bindings{"methods": []string{"put"}}.Methods())
	s.Assert().Empty(Bindings{}.Route())
	s.Assert().Nil(Bindings{}.Methods())
}

func (s *RequestSuite) TestNewFunctionContext() {
	a := NewFunctionContext("fn", "/home/fn")
	b := NewFunctionContext("fn", "/home/fn")

	s.Assert().NotEmpty(a.InvocationID)
	s.Assert().NotEqual(a.InvocationID, b.InvocationID)
	s.Assert().Equal("fn", a.FunctionName)
	s.Assert().Equal("/home/fn", a.FunctionDirectory)
	s.Assert().NotNil(a.Bindings)
}
