/*
Copyright 2026 The Razor Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Command razorctl is a CLI front end for the razorset package:
// importing a feed into a set file, querying a set, merging two sets,
// and validating a set's requirements against an upstream.
package main

import (
	"razor.dev/pkg/cmdmain"
)

func main() {
	cmdmain.Main()
}
