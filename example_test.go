package lambdaapi_test

import (
	"context"
	"fmt"

	lambdaapi "github.com/jplandry908/lambda-api"
)

func Example() {
	app := lambdaapi.New()

	_ = app.Get("/hello", func(ctx context.Context, req *lambdaapi.Request, res *lambdaapi.Response) (any, error) {
		return map[string]string{"msg": "hi"}, nil
	})

	event := []byte(`{
		"httpMethod": "GET",
		"path": "/hello",
		"requestContext": {"requestId": "example"}
	}`)

	reply, err := app.Dispatch(context.Background(), event)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(reply))
	// Output: {"statusCode":200,"headers":{"Content-Type":"application/json"},"multiValueHeaders":{"Content-Type":["application/json"]},"body":"{\"msg\":\"hi\"}","isBase64Encoded":false}
}

func Example_pathParameters() {
	app := lambdaapi.New()

	_ = app.Get("/users/:id", func(ctx context.Context, req *lambdaapi.Request, res *lambdaapi.Response) (any, error) {
		return map[string]string{"id": req.Params["id"]}, nil
	})

	event := []byte(`{
		"httpMethod": "GET",
		"path": "/users/42",
		"requestContext": {"requestId": "example"}
	}`)

	reply, _ := app.Dispatch(context.Background(), event)
	fmt.Println(string(reply))
	// Output: {"statusCode":200,"headers":{"Content-Type":"application/json"},"multiValueHeaders":{"Content-Type":["application/json"]},"body":"{\"id\":\"42\"}","isBase64Encoded":false}
}

func ExampleAPI_UseError() {
	app := lambdaapi.New()

	_ = app.UseError(func(ctx context.Context, err error, req *lambdaapi.Request, res *lambdaapi.Response, next lambdaapi.Next) error {
		return res.Error(503, "temporarily unavailable")
	})
	_ = app.Get("/flaky", func(ctx context.Context, req *lambdaapi.Request, res *lambdaapi.Response) (any, error) {
		return nil, fmt.Errorf("backend down")
	})

	event := []byte(`{
		"httpMethod": "GET",
		"path": "/flaky",
		"requestContext": {"requestId": "example"}
	}`)

	reply, _ := app.Dispatch(context.Background(), event)
	fmt.Println(string(reply))
	// Output: {"statusCode":503,"headers":{"Content-Type":"application/json"},"multiValueHeaders":{"Content-Type":["application/json"]},"body":"{\"error\":\"temporarily unavailable\"}","isBase64Encoded":false}
}
