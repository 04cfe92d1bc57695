package main

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/polydawn/refmt"
	"github.com/polydawn/refmt/json"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/loader"
)

func SerializeResult(format string, result api.Event_Result, resultErr error, stdout io.Writer, stderr io.Writer) {
	result.SetError(resultErr)
	ev := api.Event{Result: &result}
	switch format {
	case FmtJson:
		marshaller := refmt.NewMarshallerAtlased(json.EncodeOptions{}, stdout, api.Atlas)
		err := marshaller.Marshal(&ev)
		if err != nil {
			panic(err)
		}
		fmt.Fprintln(stdout)
	case FmtDumb:
		if resultErr != nil {
			fmt.Fprintln(stderr, resultErr)
			return
		}
		if result.Path != "" {
			fmt.Fprintln(stdout, result.Path)
		}
		for _, v := range result.Values {
			fmt.Fprintln(stdout, v)
		}
	default:
		panic(fmt.Errorf("muskcult: invalid format %s", format))
	}
}

/*
	Starts draining a monitor channel into stderr, if verbose, or into
	nothing otherwise.  The returned func closes the channel and waits for
	the drain to finish; call it once everything using the monitor is done.
*/
func startMonitor(format string, verbose bool, stderr io.Writer) (api.Monitor, func()) {
	ch := make(chan api.Event)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			if !verbose || ev.Log == nil {
				continue
			}
			switch format {
			case FmtJson:
				marshaller := refmt.NewMarshallerAtlased(json.EncodeOptions{}, stderr, api.Atlas)
				if err := marshaller.Marshal(&ev); err != nil {
					panic(err)
				}
				fmt.Fprintln(stderr)
			default:
				fmt.Fprintf(stderr, "%s [%s] %s\n", ev.Log.Time.Format("15:04:05.000"), ev.Log.Level, ev.Log.Msg)
			}
		}
	}()
	var once sync.Once
	return api.Monitor{Chan: ch}, func() {
		once.Do(func() {
			close(ch)
			wg.Wait()
		})
	}
}

/*
	Renders a value returned from loaded code as JSON.

	Maps are rendered with their keys sorted, so output is stable;
	functions are rendered as a placeholder string.
*/
func formatValue(v interface{}) string {
	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.String()
}

func writeValue(buf *bytes.Buffer, v interface{}) {
	switch v2 := v.(type) {
	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range v2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValue(buf, elem)
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(v2))
		for k := range v2 {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValue(buf, k)
			buf.WriteByte(':')
			writeValue(buf, v2[k])
		}
		buf.WriteByte('}')
	case loader.Callable:
		writeValue(buf, "<function "+v2.Name+">")
	case []byte:
		writeValue(buf, string(v2))
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(v2))
	case int64:
		buf.WriteString(strconv.FormatInt(v2, 10))
	case float64:
		buf.WriteString(strconv.FormatFloat(v2, 'g', -1, 64))
	default:
		var leaf bytes.Buffer
		if err := refmt.NewMarshaller(json.EncodeOptions{}, &leaf).Marshal(v); err != nil {
			buf.WriteString(fmt.Sprintf("%q", fmt.Sprint(v)))
			return
		}
		buf.WriteString(strings.TrimSpace(leaf.String()))
	}
}
